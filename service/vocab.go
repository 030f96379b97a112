package service

import "path"

// Annotation type URIs. The linked-entity types are not on lappsgrid.org yet,
// so they are defined here until the vocabulary catches up.
const (
	NamedEntityURI               = "http://vocab.lappsgrid.org/NamedEntity"
	SyntacticRelationURI         = "http://vocab.lappsgrid.org/SyntacticRelation"
	LinkedNamedEntityURI         = "http://vocab.lappsgrid.org/LinkedNamedEntity"
	LinkedNamedEntityRelationURI = "http://vocab.lappsgrid.org/LinkedNamedEntityRelation"
)

// atTypeName reduces an annotation type URI to its short name, so that
// versioned vocabulary prefixes still match.
func atTypeName(uri string) string {
	return path.Base(uri)
}
