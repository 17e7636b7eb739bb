package reference

//go:generate go run ../../cmd/posgen -in inventory/ontonotes5.yaml -out pos_gen.go

// PartOfSpeech tags a non-person token with the entity label the parser gave
// it. The set is pinned to PosInventoryVersion; see pos_gen.go.
type PartOfSpeech string

// Label returns the tag's description.
func (p PartOfSpeech) Label() string {
	if d, ok := posDescriptions[p]; ok {
		return d
	}
	return string(p)
}

// Valid reports whether p belongs to the pinned inventory.
func (p PartOfSpeech) Valid() bool {
	_, ok := posDescriptions[p]
	return ok
}

// LookupPartOfSpeech maps a parser label onto the pinned inventory.
func LookupPartOfSpeech(label string) (PartOfSpeech, bool) {
	p := PartOfSpeech(label)
	return p, p.Valid()
}

// PartsOfSpeech returns the inventory in generation order, untagged first.
func PartsOfSpeech() []PartOfSpeech {
	out := make([]PartOfSpeech, len(posOrder))
	copy(out, posOrder)
	return out
}
