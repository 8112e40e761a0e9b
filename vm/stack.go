package vm

type stack struct {
	data  []uint64
	limit int
}

func newStack(limit int) *stack {
	return &stack{data: make([]uint64, 0, 16), limit: limit}
}

func (s *stack) push(v uint64) error {
	if s.limit > 0 && len(s.data) >= s.limit {
		return ErrStackOverflow
	}
	s.data = append(s.data, v)
	return nil
}

func (s *stack) pop() (uint64, error) {
	if len(s.data) == 0 {
		return 0, ErrStackUnderflow
	}
	v := s.data[len(s.data)-1]
	s.data = s.data[:len(s.data)-1]
	return v, nil
}

// pop2 removes the top two operands, failing without change when fewer exist.
func (s *stack) pop2() (uint64, uint64, error) {
	if len(s.data) < 2 {
		return 0, 0, ErrStackUnderflow
	}
	a, b := s.data[len(s.data)-1], s.data[len(s.data)-2]
	s.data = s.data[:len(s.data)-2]
	return a, b, nil
}
