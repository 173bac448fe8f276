package app

// teardown releases partially initialized dependencies in reverse order of
// acquisition.
type teardown struct {
	fns []func()
}

func (t *teardown) push(fn func()) {
	t.fns = append(t.fns, fn)
}

// run calls every pushed function once, last pushed first.
func (t *teardown) run() {
	for i := len(t.fns) - 1; i >= 0; i-- {
		t.fns[i]()
	}
	t.fns = nil
}
