package cpu

import (
	"errors"
	"math/bits"
	"testing"

	"github.com/stretchr/testify/assert"
)

// printBuffer collects PRN output.
type printBuffer struct {
	Values []byte
}

func (pb *printBuffer) Print(value byte) error {
	pb.Values = append(pb.Values, value)
	return nil
}

// newTestCpu creates a CPU with code loaded at address 0.
func newTestCpu(t *testing.T, code ...byte) (cpu *Cpu, output *printBuffer) {
	cpu = NewCpu(MEMORY_SIZE)
	output = &printBuffer{}
	cpu.Printer = output

	err := cpu.Load(code)
	if err != nil {
		t.Fatal(err)
	}

	return
}

// runTestCpu ticks until halt or error.
func runTestCpu(cpu *Cpu) (err error) {
	for range 1000 {
		err = cpu.Tick()
		if err != nil || cpu.Halted {
			return
		}
	}

	return errors.New("runaway program")
}

func TestNewCpu(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(MEMORY_SIZE)

	assert.Equal(MEMORY_SIZE, cpu.Memory.Len())
	assert.Equal(REGISTER_COUNT, len(cpu.Register))
	assert.Equal(byte(STACK_TOP), cpu.Register[REG_SP])
	assert.Equal(byte(0), cpu.Register[REG_END])
	assert.Equal(Flags(0), cpu.Flags)
	assert.Equal(0, cpu.Pc)
	assert.False(cpu.Halted)
	for address := range cpu.Memory.Len() {
		assert.Equal(byte(0), cpu.Memory.Data[address])
	}
}

func TestCpuLoad(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(t, 0x82, 0x00, 0x08, 0x01)

	assert.Equal(byte(4), cpu.Register[REG_END])
	assert.Equal([]byte{0x82, 0x00, 0x08, 0x01}, cpu.Memory.Data[:4])

	err := cpu.Load(make([]byte, MEMORY_SIZE+1))
	assert.ErrorIs(err, ErrProgramTooLarge)
}

func TestCpuReset(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(t, 0x82, 0x00, 0x08, 0x01)
	assert.NoError(runTestCpu(cpu))
	assert.True(cpu.Halted)

	cpu.Reset()
	assert.False(cpu.Halted)
	assert.Equal(0, cpu.Pc)
	assert.Equal(0, cpu.Ticks)
	assert.Equal(byte(0), cpu.Register[0])
	assert.Equal(byte(STACK_TOP), cpu.Register[REG_SP])
	assert.Equal(byte(0), cpu.Memory.Data[0])
}

func TestCpuAddPrint(t *testing.T) {
	assert := assert.New(t)

	cpu, output := newTestCpu(t,
		0b10000010, 0, 5, // LDI R0,5
		0b10000010, 1, 3, // LDI R1,3
		0b10100000, 0, 1, // ADD R0,R1
		0b01000111, 0, // PRN R0
		0b00000001, // HLT
	)

	assert.NoError(runTestCpu(cpu))
	assert.True(cpu.Halted)
	assert.Equal([]byte{8}, output.Values)
	assert.Equal(11, cpu.Pc)
	assert.Equal(5, cpu.Ticks)

	assert.ErrorIs(cpu.Tick(), ErrHalted)
	assert.Equal(11, cpu.Pc)
}

func TestCpuMul(t *testing.T) {
	assert := assert.New(t)

	cpu, output := newTestCpu(t,
		0b10000010, 0, 8, // LDI R0,8
		0b10000010, 1, 9, // LDI R1,9
		0b10100010, 0, 1, // MUL R0,R1
		0b01000111, 0, // PRN R0
		0b00000001, // HLT
	)

	assert.NoError(runTestCpu(cpu))
	assert.Equal([]byte{72}, output.Values)
}

func TestCpuStore(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(t,
		0b10000010, 0, 0x99, // LDI R0,0x99
		0b10000010, 1, 0x80, // LDI R1,0x80
		0b10000100, 0, 1, // ST R0,R1
		0b00000001, // HLT
	)

	assert.NoError(runTestCpu(cpu))
	assert.Equal(byte(0x99), cpu.Memory.Data[0x80])
}

func TestCpuPushPop(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(t,
		0b10000010, 0, 7, // LDI R0,7
		0b01000101, 0, // PUSH R0
		0b10000010, 0, 0, // LDI R0,0
		0b01000110, 0, // POP R0
		0b00000001, // HLT
	)

	assert.NoError(runTestCpu(cpu))
	assert.Equal(byte(7), cpu.Register[0])
	assert.Equal(byte(STACK_TOP), cpu.Register[REG_SP])
	assert.Equal(byte(7), cpu.Memory.Data[STACK_TOP-1])
}

func TestCpuCallReturn(t *testing.T) {
	assert := assert.New(t)

	cpu, output := newTestCpu(t,
		0b10000010, 1, 8, // 0: LDI R1,8
		0b01010000, 1, // 3: CALL R1
		0b01000111, 0, // 5: PRN R0
		0b00000001,        // 7: HLT
		0b10000010, 0, 42, // 8: LDI R0,42
		0b00010001, // 11: RET
	)

	assert.NoError(runTestCpu(cpu))
	assert.Equal([]byte{42}, output.Values)
	assert.Equal(7, cpu.Pc)
	assert.Equal(byte(STACK_TOP), cpu.Register[REG_SP])
	assert.Equal(byte(5), cpu.Memory.Data[STACK_TOP-1])
}

func TestCpuCallPc(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(t,
		0b01010000, 1, // CALL R1
	)
	cpu.Register[1] = 0x40

	assert.NoError(cpu.Tick())
	assert.Equal(0x40, cpu.Pc)
	assert.Equal(byte(STACK_TOP-1), cpu.Register[REG_SP])
	assert.Equal(byte(CALL_RETURN_OFFSET), cpu.Memory.Data[STACK_TOP-1])
}

func TestCpuStackOverflow(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(t,
		0b01000101, 0, // PUSH R0
		0b01000101, 0, // PUSH R0
		0b00000001, // HLT
	)
	cpu.Register[REG_END] = STACK_TOP - 1

	assert.NoError(cpu.Tick())
	assert.Equal(byte(STACK_TOP-1), cpu.Register[REG_SP])

	err := cpu.Tick()
	assert.ErrorIs(err, ErrStackOverflow)
	assert.Equal(2, cpu.Pc)
	assert.Equal(byte(STACK_TOP-1), cpu.Register[REG_SP])
}

func TestCpuAddressFault(t *testing.T) {
	assert := assert.New(t)

	for _, pc := range []int{MEMORY_SIZE, MEMORY_SIZE - 1, MEMORY_SIZE + 10, -1} {
		cpu, _ := newTestCpu(t)
		cpu.Pc = pc

		err := cpu.Tick()
		assert.ErrorIs(err, ErrAddressFault, pc)
		assert.Equal(pc, cpu.Pc)
		assert.Equal(0, cpu.Ticks)
	}
}

func TestCpuUnknownInstruction(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(t,
		0b10000010, 0, 9, // LDI R0,9
		0b10111111, 0, 1, // not an opcode
	)

	assert.NoError(cpu.Tick())
	before := cpu.Register
	flags := cpu.Flags

	err := cpu.Tick()
	assert.ErrorIs(err, ErrUnknownInstruction)

	var eu *ErrUnknown
	if assert.True(errors.As(err, &eu)) {
		assert.Equal(Code(0b10111111), eu.Code)
		assert.Equal(3, eu.Pc)
	}

	assert.Equal(before, cpu.Register)
	assert.Equal(flags, cpu.Flags)
	assert.Equal(3, cpu.Pc)
}

func TestCpuRegisterInvalid(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name string
		code []byte
	}){
		{"ldi", []byte{0b10000010, 8, 1}},
		{"add_a", []byte{0b10100000, 9, 0}},
		{"add_b", []byte{0b10100000, 0, 200}},
		{"push", []byte{0b01000101, 8}},
		{"pop", []byte{0b01000110, 0xff}},
	}

	for _, entry := range table {
		cpu, _ := newTestCpu(t, entry.code...)
		before := cpu.Register

		err := cpu.Tick()
		assert.ErrorIs(err, ErrRegisterInvalid, entry.name)
		assert.True(errors.Is(err, ErrOpcode{}), entry.name)
		assert.Equal(before, cpu.Register, entry.name)
		assert.Equal(0, cpu.Pc, entry.name)
	}
}

func TestCpuPrinterMissing(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(t, 0b01000111, 0)
	cpu.Printer = nil

	assert.ErrorIs(cpu.Tick(), ErrPrinterMissing)
}

func TestAluWrap(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		op       AluOp
		a, b     byte
		expected byte
	}){
		{ALU_ADD, 250, 10, 4},
		{ALU_ADD, 255, 1, 0},
		{ALU_ADD, 1, 2, 3},
		{ALU_MUL, 16, 17, 16},
		{ALU_MUL, 255, 255, 1},
		{ALU_MUL, 12, 0, 0},
	}

	for _, entry := range table {
		cpu := NewCpu(MEMORY_SIZE)
		cpu.Register[0] = entry.a
		cpu.Register[1] = entry.b
		cpu.doAlu(entry.op, 0, 1)
		assert.Equal(entry.expected, cpu.Register[0], "%v %v %v", entry.op, entry.a, entry.b)
		assert.Equal(entry.b, cpu.Register[1])
	}
}

func TestAluWrapAll(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(MEMORY_SIZE)
	for a := range 256 {
		for b := range 256 {
			cpu.Register[0] = byte(a)
			cpu.Register[1] = byte(b)
			cpu.doAlu(ALU_ADD, 0, 1)
			if !assert.Equal(byte((a+b)%256), cpu.Register[0]) {
				return
			}

			cpu.Register[0] = byte(a)
			cpu.doAlu(ALU_MUL, 0, 1)
			if !assert.Equal(byte((a*b)%256), cpu.Register[0]) {
				return
			}
		}
	}
}

func TestAluCompare(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		a, b     byte
		expected Flags
	}){
		{0, 0, FLAG_EQ},
		{5, 5, FLAG_EQ},
		{1, 2, FLAG_LT},
		{0, 255, FLAG_LT},
		{2, 1, FLAG_GT},
		{255, 0, FLAG_GT},
	}

	for _, start := range []Flags{0, FLAG_MASK, FLAG_LT, 0xff} {
		for _, entry := range table {
			cpu := NewCpu(MEMORY_SIZE)
			cpu.Flags = start
			cpu.Register[2] = entry.a
			cpu.Register[3] = entry.b
			cpu.doAlu(ALU_CMP, 2, 3)

			assert.Equal(entry.expected, cpu.Flags&FLAG_MASK, "%v %v", entry.a, entry.b)
			assert.Equal(1, bits.OnesCount8(byte(cpu.Flags&FLAG_MASK)))
			assert.Equal(start&^FLAG_MASK, cpu.Flags&^FLAG_MASK)
		}
	}
}

func TestAluUnsupported(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(MEMORY_SIZE)
	assert.Panics(func() { cpu.doAlu(AluOp(99), 0, 1) })
}

func TestCpuString(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(MEMORY_SIZE)
	cpu.Register[0] = 0xab
	cpu.Flags = FLAG_GT

	text := cpu.String()
	assert.Contains(text, "   r0: AB\n")
	assert.Contains(text, "   sp: F4\n")
	assert.Contains(text, "flags: gt\n")
}

func TestCpuDefines(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(MEMORY_SIZE)
	defines := map[string]string{}
	for name, value := range cpu.Defines() {
		defines[name] = value
	}

	assert.Equal("0xf4", defines["STACK_TOP"])
	assert.Equal("7", defines["REG_SP"])
	assert.Equal("0x4", defines["FLAG_LT"])
}
