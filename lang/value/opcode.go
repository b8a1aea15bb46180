package value

import "fmt"

// Op is a single bytecode instruction opcode. Operand encoding (when an
// opcode takes one) is fixed by its row in the table below; see Chunk for
// the encoding helpers.
type Op uint8

//nolint:revive
const (
	OpConstant Op = iota
	OpNil
	OpTrue
	OpFalse
	OpPop
	OpDup
	OpDup2

	OpDefineGlobal      // nameIdx(1)
	OpDefineFinalGlobal // nameIdx(1)
	OpGetGlobal         // nameIdx(1)
	OpSetGlobal         // nameIdx(1)

	OpGetLocal // slot(1)
	OpSetLocal // slot(1)

	OpGetUpvalue // idx(1)
	OpSetUpvalue // idx(1)
	OpCloseUpvalue

	OpEqual
	OpNotEqual
	OpGreater
	OpGreaterEqual
	OpLess
	OpLessEqual

	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpModulo
	OpPow

	OpNegate
	OpNot

	OpJump        // offset(2)
	OpJumpIfFalse // offset(2)
	OpJumpIfTrue  // offset(2)
	OpLoop        // offset(2)

	OpCall         // argCount(1)
	OpInvoke       // nameIdx(1) argCount(1)
	OpSuperInvoke  // nameIdx(1) argCount(1)
	OpClosure      // funcIdx(1) then UpvalueCount-many (isLocal byte, index byte) pairs
	OpReturn

	OpClass    // nameIdx(1)
	OpMethod   // nameIdx(1)
	OpInherit
	OpGetSuper // nameIdx(1)

	OpGetProperty // nameIdx(1)
	OpSetProperty // nameIdx(1)

	OpList  // count(1)
	OpDict  // count(1), pops 2*count values
	OpEnum  // nameIdx(1) count(1); member name constants occupy the count indices right after nameIdx
	OpGetIndex
	OpSetIndex
	OpSlice

	OpHas
	OpHasNot
	OpLen

	OpImport   // pathIdx(1)
	OpImportAs // pathIdx(1) nameIdx(1)

	OpInterpolate // count(1)
	OpAssert

	maxOp
)

var opNames = [maxOp]string{
	OpConstant:          "CONSTANT",
	OpNil:                "NIL",
	OpTrue:               "TRUE",
	OpFalse:              "FALSE",
	OpPop:                "POP",
	OpDup:                "DUP",
	OpDup2:               "DUP2",
	OpDefineGlobal:       "DEFINE_GLOBAL",
	OpDefineFinalGlobal:  "DEFINE_FINAL_GLOBAL",
	OpGetGlobal:          "GET_GLOBAL",
	OpSetGlobal:          "SET_GLOBAL",
	OpGetLocal:           "GET_LOCAL",
	OpSetLocal:           "SET_LOCAL",
	OpGetUpvalue:         "GET_UPVALUE",
	OpSetUpvalue:         "SET_UPVALUE",
	OpCloseUpvalue:       "CLOSE_UPVALUE",
	OpEqual:              "EQUAL",
	OpNotEqual:           "NOT_EQUAL",
	OpGreater:            "GREATER",
	OpGreaterEqual:       "GREATER_EQUAL",
	OpLess:               "LESS",
	OpLessEqual:          "LESS_EQUAL",
	OpAdd:                "ADD",
	OpSubtract:           "SUBTRACT",
	OpMultiply:           "MULTIPLY",
	OpDivide:             "DIVIDE",
	OpModulo:             "MODULO",
	OpPow:                "POW",
	OpNegate:             "NEGATE",
	OpNot:                "NOT",
	OpJump:               "JUMP",
	OpJumpIfFalse:        "JUMP_IF_FALSE",
	OpJumpIfTrue:         "JUMP_IF_TRUE",
	OpLoop:               "LOOP",
	OpCall:               "CALL",
	OpInvoke:             "INVOKE",
	OpSuperInvoke:        "SUPER_INVOKE",
	OpClosure:            "CLOSURE",
	OpReturn:             "RETURN",
	OpClass:              "CLASS",
	OpMethod:             "METHOD",
	OpInherit:            "INHERIT",
	OpGetSuper:           "GET_SUPER",
	OpGetProperty:        "GET_PROPERTY",
	OpSetProperty:        "SET_PROPERTY",
	OpList:               "LIST",
	OpDict:               "DICT",
	OpEnum:               "ENUM",
	OpGetIndex:           "GET_INDEX",
	OpSetIndex:           "SET_INDEX",
	OpSlice:              "SLICE",
	OpHas:                "HAS",
	OpHasNot:             "HAS_NOT",
	OpLen:                "LEN",
	OpImport:             "IMPORT",
	OpImportAs:           "IMPORT_AS",
	OpInterpolate:        "INTERPOLATE",
	OpAssert:             "ASSERT",
}

func (op Op) String() string {
	if op < maxOp {
		return opNames[op]
	}
	return fmt.Sprintf("illegal op (%d)", op)
}
