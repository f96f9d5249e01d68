// Package types defines the records shared by every kgcurate stage.
//
//   - Triplet: a (head, relation, tail) fact, the unit of storage and transformation
//   - Pair: an ordered (head, tail) entity pair, used for grouping and distance queries
//   - Split: one of train, valid or test
//   - ParseError: a malformed input line, with its file and 1-based line number
//
// Lines are whitespace separated and carry no escaping, so entities and relations
// must not contain spaces:
//
//	t, err := types.ParseLine("Barack_Obama birth_place Honolulu")
//	if err != nil {
//	    // errors.Is(err, types.ErrMalformedLine)
//	}
//	fmt.Println(t.Line())
package types
