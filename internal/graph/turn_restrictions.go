package graph

// RestrictionID identifies one turn restriction.
type RestrictionID int32

// TurnRestriction applies only to CAR mode. It carries the ordered sequence
// of edges that must be traversed in order to activate it and whether
// completing that sequence is prohibited.
type TurnRestriction struct {
	ID          RestrictionID
	EdgeSequence []EdgeID
	Prohibited  bool
}

// TurnRestrictions is a multimap from edge -> restriction id and its
// reverse, used by the router to detect when a traversal enters or
// completes a restriction.
type TurnRestrictions struct {
	restrictions []TurnRestriction
	byFirstEdge  map[EdgeID][]RestrictionID
}

// NewTurnRestrictions returns an empty restriction set.
func NewTurnRestrictions() *TurnRestrictions {
	return &TurnRestrictions{byFirstEdge: make(map[EdgeID][]RestrictionID)}
}

// Add registers a restriction and indexes it by the first edge of its
// sequence.
func (tr *TurnRestrictions) Add(seq []EdgeID, prohibited bool) RestrictionID {
	id := RestrictionID(len(tr.restrictions))
	tr.restrictions = append(tr.restrictions, TurnRestriction{ID: id, EdgeSequence: seq, Prohibited: prohibited})
	if len(seq) > 0 {
		tr.byFirstEdge[seq[0]] = append(tr.byFirstEdge[seq[0]], id)
	}
	return id
}

// StartingAt returns the restrictions whose sequence begins with edge e.
func (tr *TurnRestrictions) StartingAt(e EdgeID) []RestrictionID {
	return tr.byFirstEdge[e]
}

// Get returns the restriction by id.
func (tr *TurnRestrictions) Get(id RestrictionID) TurnRestriction {
	return tr.restrictions[id]
}
