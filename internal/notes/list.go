package notes

import "fmt"

// NextID returns the id for a note appended to list: one past the largest
// id present, or 0 for an empty list.
func NextID(list []Note) int {
	if len(list) == 0 {
		return 0
	}
	max := list[0].ID
	for _, n := range list[1:] {
		if n.ID > max {
			max = n.ID
		}
	}
	return max + 1
}

// Append returns a new list with text added at the end. The input list is
// not modified.
func Append(list []Note, text string) ([]Note, Note) {
	n := Note{ID: NextID(list), Text: text}
	out := make([]Note, 0, len(list)+1)
	out = append(out, list...)
	out = append(out, n)
	return out, n
}

// RemoveAt returns a new list without the note at position i.
func RemoveAt(list []Note, i int) ([]Note, Note, error) {
	if i < 0 || i >= len(list) {
		return nil, Note{}, fmt.Errorf("remove at %d of %d: %w", i, len(list), ErrIndexOutOfRange)
	}
	out := make([]Note, 0, len(list)-1)
	out = append(out, list[:i]...)
	out = append(out, list[i+1:]...)
	return out, list[i], nil
}

// IndexOf returns the position of the note with the given id, or -1.
func IndexOf(list []Note, id int) int {
	for i, n := range list {
		if n.ID == id {
			return i
		}
	}
	return -1
}
