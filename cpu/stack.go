package cpu

// push stores value below the stack pointer, refusing to grow the stack
// into the loaded program.
func (cpu *Cpu) push(value byte) (err error) {
	sp := int(cpu.Register[REG_SP]) - 1
	if sp < int(cpu.Register[REG_END]) {
		err = ErrStackOverflow
		return
	}

	err = cpu.Memory.Write(sp, value)
	if err != nil {
		return
	}

	cpu.Register[REG_SP] = byte(sp)
	return
}

// pop loads the value at the stack pointer into register dst. The stack
// pointer never moves above STACK_TOP, so popping an empty stack rereads
// the same cell.
func (cpu *Cpu) pop(dst byte) (err error) {
	value, err := cpu.Memory.Read(int(cpu.Register[REG_SP]))
	if err != nil {
		return
	}

	cpu.Register[dst] = value
	if cpu.Register[REG_SP] < STACK_TOP {
		cpu.Register[REG_SP]++
	}

	return
}

// call saves the return address on the stack and jumps to target.
// Unlike push, the stack pointer is not checked against the program end.
func (cpu *Cpu) call(target byte) (err error) {
	sp := cpu.Register[REG_SP] - 1
	err = cpu.Memory.Write(int(sp), byte(cpu.Pc+CALL_RETURN_OFFSET))
	if err != nil {
		return
	}

	cpu.Register[REG_SP] = sp
	cpu.Pc = int(target)
	return
}

// ret returns to the address saved on the stack.
func (cpu *Cpu) ret() (err error) {
	sp := cpu.Register[REG_SP]
	address, err := cpu.Memory.Read(int(sp))
	if err != nil {
		return
	}

	cpu.Register[REG_SP] = sp + 1
	cpu.Pc = int(address)
	return
}
