package service

import "fmt"

// identifierSource hands out sequential per-prefix annotation identifiers
// ("nel1", "nel2", "nelr1", ...). A fresh source is used for every annotate
// call so identifiers restart with each document.
type identifierSource struct {
	counters map[string]int
}

func newIdentifierSource() *identifierSource {
	return &identifierSource{counters: map[string]int{}}
}

func (s *identifierSource) next(prefix string) string {
	s.counters[prefix]++
	return fmt.Sprintf("%s%d", prefix, s.counters[prefix])
}
