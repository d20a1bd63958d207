package message

import "fmt"

// Type is the frame category. Instruction codes are scoped by Type.
type Type uint8

const (
	TypeCommand      Type = 1
	TypeDataTransfer Type = 2
	TypeServerReturn Type = 3
)

func (t Type) String() string {
	switch t {
	case TypeCommand:
		return "command"
	case TypeDataTransfer:
		return "data_transfer"
	case TypeServerReturn:
		return "server_return"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

// Command instructions.
const (
	InstGenHashSalt int64 = 1
	InstRegister    int64 = 2
)

// ServerReturn instructions.
const (
	ReturnAccepted       int64 = 1
	ReturnUserExists     int64 = 2
	ReturnDbWriteFailed  int64 = 3
	ReturnInvalidRequest int64 = 4
	ReturnInternalError  int64 = 5
)

// RegisterArgCount is the number of fields packed into a Register frame.
const RegisterArgCount = 6
