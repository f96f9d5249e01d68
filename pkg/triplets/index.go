package triplets

// EntityIndex is a bijection between entities and dense int32 IDs.
// IDs are assigned in insertion order and are only stable within one build.
type EntityIndex struct {
	ids   map[string]int32
	names []string
}

// NewEntityIndex creates an empty index with room for sizeHint entities.
func NewEntityIndex(sizeHint int) *EntityIndex {
	return &EntityIndex{
		ids:   make(map[string]int32, sizeHint),
		names: make([]string, 0, sizeHint),
	}
}

// Add returns the ID of entity, assigning the next free one if it is new.
func (x *EntityIndex) Add(entity string) int32 {
	if id, ok := x.ids[entity]; ok {
		return id
	}
	id := int32(len(x.names))
	x.ids[entity] = id
	x.names = append(x.names, entity)
	return id
}

// ID looks up the ID of entity.
func (x *EntityIndex) ID(entity string) (int32, bool) {
	id, ok := x.ids[entity]
	return id, ok
}

// Entity returns the entity for id. It panics when id is out of range.
func (x *EntityIndex) Entity(id int32) string {
	return x.names[id]
}

// Entities returns every entity in ID order. The slice must not be modified.
func (x *EntityIndex) Entities() []string {
	return x.names
}

// Len returns the number of indexed entities.
func (x *EntityIndex) Len() int {
	return len(x.names)
}
