package syntax

// scopeStack is the stack of lexical scopes the parser resolves variables
// against.  Each frame is the set of variable names declared in it.  The
// outermost frame is the file scope and is never popped.
type scopeStack struct {
	frames []map[string]struct{}
}

// newScopeStack creates a scope stack holding only the file scope.
func newScopeStack() *scopeStack {
	return &scopeStack{frames: []map[string]struct{}{{}}}
}

// push opens a new innermost scope.
func (s *scopeStack) push() {
	s.frames = append(s.frames, make(map[string]struct{}))
}

// pop closes the innermost scope discarding all its declarations.
func (s *scopeStack) pop() {
	if len(s.frames) > 1 {
		s.frames = s.frames[:len(s.frames)-1]
	}
}

// declare adds name to the innermost scope.  It returns false if the name is
// already declared in that scope.  Names in enclosing scopes are shadowed.
func (s *scopeStack) declare(name string) bool {
	frame := s.frames[len(s.frames)-1]
	if _, ok := frame[name]; ok {
		return false
	}

	frame[name] = struct{}{}
	return true
}

// lookup returns the depth of the innermost frame declaring name.  The file
// scope has depth zero.
func (s *scopeStack) lookup(name string) (int, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if _, ok := s.frames[i][name]; ok {
			return i, true
		}
	}

	return -1, false
}
