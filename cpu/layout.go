package cpu

const (
	MEMORY_SIZE        = 256  // Default memory size, in bytes.
	REGISTER_COUNT     = 8    // Number of general-purpose registers.
	REG_END            = 4    // Register holding the end of the loaded program.
	REG_SP             = 7    // Stack pointer register.
	STACK_TOP          = 0xf4 // Initial stack pointer; the stack grows down.
	CALL_RETURN_OFFSET = 2    // Return address offset from a CALL opcode.
)
