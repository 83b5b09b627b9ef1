package match

import (
	"math/bits"

	"github.com/treegrep/treegrep/pkg/language"
)

const kindSetWords = (1 << 16) / 64

// KindSet is a fixed bitset over grammar kind ids. A nil *KindSet means
// "every kind is possible" and is the usual answer for matchers that cannot
// narrow their candidates up front.
type KindSet struct {
	words [kindSetWords]uint64
	size  int
}

// NewKindSet builds a set holding the given kinds.
func NewKindSet(kinds ...language.KindID) *KindSet {
	set := &KindSet{}

	for _, kind := range kinds {
		set.Add(kind)
	}

	return set
}

// Add inserts a kind id.
func (s *KindSet) Add(kind language.KindID) {
	word, bit := kind/64, uint64(1)<<(kind%64)
	if s.words[word]&bit == 0 {
		s.words[word] |= bit
		s.size++
	}
}

// Contains reports membership. A nil set contains every kind.
func (s *KindSet) Contains(kind language.KindID) bool {
	if s == nil {
		return true
	}

	return s.words[kind/64]&(uint64(1)<<(kind%64)) != 0
}

// Len reports how many kinds are in the set. Only meaningful on non-nil sets.
func (s *KindSet) Len() int {
	return s.size
}

// Each visits every member kind in ascending order.
func (s *KindSet) Each(fn func(language.KindID)) {
	if s == nil {
		return
	}

	for word, w := range s.words {
		for w != 0 {
			fn(language.KindID(word*64 + bits.TrailingZeros64(w)))
			w &= w - 1
		}
	}
}

// Union returns a set holding members of either input. Union with a nil set
// yields nil, since nil already means everything.
func (s *KindSet) Union(other *KindSet) *KindSet {
	if s == nil || other == nil {
		return nil
	}

	out := &KindSet{}
	for word := range out.words {
		out.words[word] = s.words[word] | other.words[word]
	}

	out.size = out.count()

	return out
}

// Intersect returns members present in both inputs. nil acts as the identity.
func (s *KindSet) Intersect(other *KindSet) *KindSet {
	if s == nil {
		return other
	}

	if other == nil {
		return s
	}

	out := &KindSet{}
	for word := range out.words {
		out.words[word] = s.words[word] & other.words[word]
	}

	out.size = out.count()

	return out
}

func (s *KindSet) count() int {
	total := 0
	for _, w := range s.words {
		total += bits.OnesCount64(w)
	}

	return total
}
