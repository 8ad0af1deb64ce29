package completion

// List is a singly linked intrusive FIFO of Completions. It backs the
// reactor's timers list, which needs O(n) scan-and-remove-from-middle
// semantics that a ring-buffer queue cannot offer; the ready queue uses
// github.com/eapache/queue instead (see package reactor).
type List struct {
	head, tail *Completion
}

// Empty reports whether the list has no members.
func (l *List) Empty() bool { return l.head == nil }

// PushBack appends c to the tail of the list. c must not already be a
// member of any list.
func (l *List) PushBack(c *Completion) {
	c.next = nil
	if l.tail == nil {
		l.head, l.tail = c, c
		return
	}
	l.tail.next = c
	l.tail = c
}

// Front returns the head of the list without removing it, or nil if empty.
func (l *List) Front() *Completion { return l.head }

// RemoveMatching walks the list exactly once, unlinking every Completion
// for which match reports true and invoking removed for each in list
// order. Survivors keep their relative order. An unlinked Completion
// sheds its list membership before removed runs, so removed may
// immediately re-queue it elsewhere.
func (l *List) RemoveMatching(match func(*Completion) bool, removed func(*Completion)) {
	var prev *Completion
	cur := l.head
	for cur != nil {
		next := cur.next
		if match(cur) {
			if prev == nil {
				l.head = next
			} else {
				prev.next = next
			}
			if cur == l.tail {
				l.tail = prev
			}
			cur.next = nil
			cur.state = Unsubmitted
			removed(cur)
		} else {
			prev = cur
		}
		cur = next
	}
}
