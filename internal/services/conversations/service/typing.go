package service

// typingSet keeps users in the order they started typing
type typingSet struct {
	order []string
	idx   map[string]int
}

func (s *typingSet) add(user string) {
	if s.idx == nil {
		s.idx = make(map[string]int)
	}
	if _, ok := s.idx[user]; ok {
		return
	}
	s.idx[user] = len(s.order)
	s.order = append(s.order, user)
}

func (s *typingSet) remove(user string) {
	i, ok := s.idx[user]
	if !ok {
		return
	}
	delete(s.idx, user)
	s.order = append(s.order[:i], s.order[i+1:]...)
	for j := i; j < len(s.order); j++ {
		s.idx[s.order[j]] = j
	}
}

func (s *typingSet) len() int { return len(s.order) }

// users returns a copy in insertion order
func (s *typingSet) users() []string {
	return append([]string(nil), s.order...)
}
