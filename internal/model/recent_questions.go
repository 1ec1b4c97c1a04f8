package model

import "encoding/json"

// RecentQuestionsCapacity 最近出现题目的缓冲区容量
const RecentQuestionsCapacity = 20

// RecentQuestions is a fixed-capacity deque of banked question ids,
// most recent first, without duplicates.
type RecentQuestions struct {
	buf  [RecentQuestionsCapacity]uint
	head int
	n    int
}

func (r *RecentQuestions) at(i int) uint {
	return r.buf[(r.head+i)%RecentQuestionsCapacity]
}

func (r *RecentQuestions) set(i int, id uint) {
	r.buf[(r.head+i)%RecentQuestionsCapacity] = id
}

// Push moves id to the front, evicting the oldest entry once full.
func (r *RecentQuestions) Push(id uint) {
	r.Remove(id)
	r.head = (r.head - 1 + RecentQuestionsCapacity) % RecentQuestionsCapacity
	r.buf[r.head] = id
	if r.n < RecentQuestionsCapacity {
		r.n++
	}
}

// Remove drops id if present.
func (r *RecentQuestions) Remove(id uint) {
	for i := 0; i < r.n; i++ {
		if r.at(i) != id {
			continue
		}
		for j := i; j < r.n-1; j++ {
			r.set(j, r.at(j+1))
		}
		r.n--
		return
	}
}

func (r *RecentQuestions) Contains(id uint) bool {
	for i := 0; i < r.n; i++ {
		if r.at(i) == id {
			return true
		}
	}
	return false
}

func (r *RecentQuestions) Len() int {
	return r.n
}

// IDs returns the ids most recent first.
func (r RecentQuestions) IDs() []uint {
	out := make([]uint, r.n)
	for i := 0; i < r.n; i++ {
		out[i] = r.at(i)
	}
	return out
}

func (r RecentQuestions) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.IDs())
}

func (r *RecentQuestions) UnmarshalJSON(b []byte) error {
	var ids []uint
	if err := json.Unmarshal(b, &ids); err != nil {
		return err
	}
	*r = RecentQuestions{}
	if len(ids) > RecentQuestionsCapacity {
		ids = ids[:RecentQuestionsCapacity]
	}
	for i := len(ids) - 1; i >= 0; i-- {
		r.Push(ids[i])
	}
	return nil
}
