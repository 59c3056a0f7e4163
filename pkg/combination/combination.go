// Package combination enumerates element subsets and slot products and derives
// the stable keys and hashes that name generated meshes.
package combination

import (
	"fmt"
	"hash/fnv"
	"strings"

	"golang.org/x/exp/slices"
)

const (
	// Separator joins the parts of a combination key
	Separator = "&"
	// SlotSeparator joins a slot name and its selected entry
	SlotSeparator = ":"
)

// MaxElements caps the number of members in a power set. 2^20 meshes is already far more than any pack ships
const MaxElements = 20

// MaxCombinations caps the number of selections in a slot product, the same
// number of meshes a power set of MaxElements yields
const MaxCombinations = 1 << MaxElements

// ValidName reports whether name may be used as an element, slot or entry name.
// Names end up inside keys, so they may not contain a separator
func ValidName(name string) bool {
	return name != "" && !strings.Contains(name, Separator) && !strings.Contains(name, SlotSeparator)
}

// Subsets returns all subsets of names with exactly size members.
// Members keep the order they have in names
func Subsets(names []string, size int) [][]string {
	n := len(names)
	if size <= 0 || size > n {
		return nil
	}
	result := [][]string{}
	idx := make([]int, size)
	for i := range idx {
		idx[i] = i
	}
	for {
		subset := make([]string, size)
		for i, j := range idx {
			subset[i] = names[j]
		}
		result = append(result, subset)

		// advance to the next index tuple
		i := size - 1
		for i >= 0 && idx[i] == n-size+i {
			i--
		}
		if i < 0 {
			return result
		}
		idx[i]++
		for j := i + 1; j < size; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

// PowerSet returns every non-empty subset of names, smallest subsets first.
// For N names this is 2^N-1 subsets
func PowerSet(names []string) ([][]string, error) {
	if len(names) > MaxElements {
		return nil, fmt.Errorf("can not combine %d elements, at most %d are supported", len(names), MaxElements)
	}
	result := make([][]string, 0, (1<<len(names))-1)
	for size := 1; size <= len(names); size++ {
		result = append(result, Subsets(names, size)...)
	}
	return result, nil
}

// Slot is a named group of mutually exclusive entries
type Slot struct {
	Name    string
	Entries []string
}

// Selection maps a slot name to the selected entry. Slots that are not
// present (or map to "") are empty
type Selection map[string]string

// IsEmpty reports whether no slot has an entry selected
func (s Selection) IsEmpty() bool {
	for _, entry := range s {
		if entry != "" {
			return false
		}
	}
	return true
}

// SlotProduct returns the cartesian product over all slots where every slot is
// either empty or holds exactly one of its entries. The result has
// Π(len(entries)+1) selections and includes the all-empty selection
func SlotProduct(slots []Slot) ([]Selection, error) {
	if _, ok := ProductSize(slots); !ok {
		return nil, fmt.Errorf("slots yield more than %d combinations", MaxCombinations)
	}
	result := []Selection{{}}
	for _, slot := range slots {
		next := make([]Selection, 0, len(result)*(len(slot.Entries)+1))
		for _, partial := range result {
			for _, entry := range slot.Entries {
				sel := make(Selection, len(partial)+1)
				for k, v := range partial {
					sel[k] = v
				}
				sel[slot.Name] = entry
				next = append(next, sel)
			}
			// the empty choice for this slot
			next = append(next, partial)
		}
		result = next
	}
	return result, nil
}

// ProductSize returns Π(len(entries)+1) for slots. ok is false when the
// product exceeds MaxCombinations
func ProductSize(slots []Slot) (n int, ok bool) {
	n = 1
	for _, slot := range slots {
		n *= len(slot.Entries) + 1
		if n > MaxCombinations {
			return 0, false
		}
	}
	return n, true
}

// CombinedKey returns the key of an element subset: the names sorted and
// joined with "&". Input order does not matter
func CombinedKey(elements []string) string {
	sorted := slices.Clone(elements)
	slices.Sort(sorted)
	return strings.Join(sorted, Separator)
}

// SlotKey returns the key of a slot selection: "slot:entry" for every declared
// slot in declared order, joined with "&". Empty slots contribute "slot:"
func SlotKey(slots []Slot, sel Selection) string {
	parts := make([]string, len(slots))
	for i, slot := range slots {
		parts[i] = slot.Name + SlotSeparator + sel[slot.Name]
	}
	return strings.Join(parts, Separator)
}

// Hash returns the FNV-1a 32 bit hash of key as 8 lowercase hex digits
func Hash(key string) string {
	h := fnv.New32a()
	h.Write([]byte(key))
	return fmt.Sprintf("%08x", h.Sum32())
}
