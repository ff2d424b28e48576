// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

// maxStackSize bounds the combined depth of the evaluation and alternate
// stacks.
const maxStackSize = 1000

// stack is the interpreter's evaluation (or alternate) stack: every entry
// is a byte slice, following the reference implementation's own internal
// representation, with typed accessors converting on demand the way the
// spec's variant-read helpers do.
type stack struct {
	stk [][]byte
}

func (s *stack) Depth() int {
	return len(s.stk)
}

func (s *stack) PushByteArray(so []byte) {
	s.stk = append(s.stk, so)
}

func (s *stack) PushInt(n scriptNum) {
	s.PushByteArray(n.Bytes())
}

func (s *stack) PushBool(b bool) {
	if b {
		s.PushByteArray([]byte{1})
	} else {
		s.PushByteArray(nil)
	}
}

// nthFromTop returns the index into stk of the nth item counted from the
// top of the stack (0 is the top itself).
func (s *stack) nthFromTop(n int) (int, error) {
	idx := len(s.stk) - n - 1
	if idx < 0 || idx >= len(s.stk) {
		return 0, ErrInvalidStackSize
	}
	return idx, nil
}

func (s *stack) PeekByteArray(n int) ([]byte, error) {
	idx, err := s.nthFromTop(n)
	if err != nil {
		return nil, err
	}
	return s.stk[idx], nil
}

// PeekInt returns the nth-from-top entry interpreted as a scriptNum,
// enforcing minimal encoding when requireMinimal is set.
func (s *stack) PeekInt(n int, requireMinimal bool) (scriptNum, error) {
	return s.PeekIntWithLen(n, requireMinimal, defaultScriptNumLen)
}

// PeekIntWithLen is PeekInt with a caller-supplied maximum scriptNum width,
// for the handful of opcodes (OP_CHECKLOCKTIMEVERIFY, OP_CHECKSEQUENCEVERIFY)
// that must read wider than the usual 4-byte numeric range.
func (s *stack) PeekIntWithLen(n int, requireMinimal bool, scriptNumLen int) (scriptNum, error) {
	b, err := s.PeekByteArray(n)
	if err != nil {
		return 0, err
	}
	return makeScriptNum(b, requireMinimal, scriptNumLen)
}

// PeekBool interprets the nth-from-top entry using Bitcoin's standard
// truthiness rule: any nonzero byte (treating a final 0x80 as the sign of
// negative zero, which is still falsy) makes the value true.
func (s *stack) PeekBool(n int) (bool, error) {
	b, err := s.PeekByteArray(n)
	if err != nil {
		return false, err
	}
	return asBool(b), nil
}

// PeekStrictBool requires a canonical boolean encoding ([] or [0x01]),
// matching the NULLFAIL-adjacent "strict bool" read used by OP_IF/NOTIF
// under the MINIMALIF rule's predecessor checks.
func (s *stack) PeekStrictBool(n int) (bool, error) {
	b, err := s.PeekByteArray(n)
	if err != nil {
		return false, err
	}
	if len(b) > 1 {
		return false, ErrMinimalData
	}
	if len(b) == 1 && b[0] != 1 {
		return false, ErrMinimalData
	}
	return len(b) == 1, nil
}

func asBool(b []byte) bool {
	for i, c := range b {
		if c != 0 {
			if i == len(b)-1 && c == 0x80 {
				return false
			}
			return true
		}
	}
	return false
}

func (s *stack) PopByteArray() ([]byte, error) {
	b, err := s.PeekByteArray(0)
	if err != nil {
		return nil, err
	}
	s.stk = s.stk[:len(s.stk)-1]
	return b, nil
}

func (s *stack) PopInt(requireMinimal bool) (scriptNum, error) {
	b, err := s.PopByteArray()
	if err != nil {
		return 0, err
	}
	return makeScriptNum(b, requireMinimal, defaultScriptNumLen)
}

func (s *stack) PopBool() (bool, error) {
	b, err := s.PopByteArray()
	if err != nil {
		return false, err
	}
	return asBool(b), nil
}

func (s *stack) DropN(n int) error {
	for i := 0; i < n; i++ {
		if _, err := s.PopByteArray(); err != nil {
			return err
		}
	}
	return nil
}

func (s *stack) DupN(n int) error {
	if n < 1 {
		return ErrInvalidStackSize
	}
	for i := 0; i < n; i++ {
		v, err := s.PeekByteArray(n - 1)
		if err != nil {
			return err
		}
		s.PushByteArray(v)
	}
	return nil
}

func (s *stack) RotN(n int) error {
	entry, err := s.nthFromTop(3*n - 1)
	if err != nil {
		return err
	}
	sl := s.stk[entry : entry+n]
	sl2 := make([][]byte, n)
	copy(sl2, sl)
	copy(s.stk[entry:], s.stk[entry+n:entry+3*n])
	copy(s.stk[len(s.stk)-n:], sl2)
	return nil
}

func (s *stack) SwapN(n int) error {
	entry, err := s.nthFromTop(2*n - 1)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		s.stk[entry+i], s.stk[entry+n+i] = s.stk[entry+n+i], s.stk[entry+i]
	}
	return nil
}

func (s *stack) OverN(n int) error {
	entry, err := s.nthFromTop(2*n - 1)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		v := s.stk[entry+i]
		s.PushByteArray(v)
	}
	return nil
}

func (s *stack) Nip(n int) error {
	idx, err := s.nthFromTop(n)
	if err != nil {
		return err
	}
	s.stk = append(s.stk[:idx], s.stk[idx+1:]...)
	return nil
}

func (s *stack) Tuck() error {
	v2, err := s.PopByteArray()
	if err != nil {
		return err
	}
	v1, err := s.PopByteArray()
	if err != nil {
		return err
	}
	s.PushByteArray(v2)
	s.PushByteArray(v1)
	s.PushByteArray(v2)
	return nil
}

func (s *stack) PickN(n int) error {
	idx, err := s.nthFromTop(n)
	if err != nil {
		return err
	}
	v := make([]byte, len(s.stk[idx]))
	copy(v, s.stk[idx])
	s.PushByteArray(v)
	return nil
}

func (s *stack) RollN(n int) error {
	idx, err := s.nthFromTop(n)
	if err != nil {
		return err
	}
	v := s.stk[idx]
	s.stk = append(s.stk[:idx], s.stk[idx+1:]...)
	s.PushByteArray(v)
	return nil
}
