package cpu

// Memory is a fixed size, byte addressed RAM.
type Memory struct {
	Data []byte
}

// NewMemory creates a zeroed memory of size bytes.
func NewMemory(size int) (mem *Memory) {
	mem = &Memory{
		Data: make([]byte, size),
	}

	return
}

// Len returns the size of the memory in bytes.
func (mem *Memory) Len() int {
	return len(mem.Data)
}

// Read the byte at address.
func (mem *Memory) Read(address int) (value byte, err error) {
	if address < 0 || address >= len(mem.Data) {
		err = ErrAddress(address)
		return
	}

	value = mem.Data[address]
	return
}

// Write a byte to address.
// Writes are bound-checked the same as reads.
func (mem *Memory) Write(address int, value byte) (err error) {
	if address < 0 || address >= len(mem.Data) {
		err = ErrAddress(address)
		return
	}

	mem.Data[address] = value
	return
}

// Reset zeroes the memory.
func (mem *Memory) Reset() {
	clear(mem.Data)
}
