package balances

// Node kinds found in meta.AffectedNodes
const (
	NODE_CREATED  string = "CreatedNode"
	NODE_MODIFIED string = "ModifiedNode"
	NODE_DELETED  string = "DeletedNode"
)

var nodeKinds = []string{NODE_MODIFIED, NODE_CREATED, NODE_DELETED}

// AffectedNode is a ledger entry touched by a transaction, as reported in
// its metadata. Ref: https://xrpl.org/transaction-metadata.html#affectednodes
type AffectedNode struct {
	NodeType        string
	LedgerEntryType string
	FinalFields     map[string]any
	PreviousFields  map[string]any
	NewFields       map[string]any
}

// ParseAffectedNodes returns the affected nodes of a metadata object.
// Entries that are not well-formed node wrappers are dropped.
func ParseAffectedNodes(meta map[string]any) []AffectedNode {
	if meta == nil {
		return nil
	}
	raw, ok := meta["AffectedNodes"].([]any)
	if !ok {
		return nil
	}

	nodes := make([]AffectedNode, 0, len(raw))
	for _, r := range raw {
		wrapper, ok := r.(map[string]any)
		if !ok {
			continue
		}
		for _, kind := range nodeKinds {
			node, ok := wrapper[kind].(map[string]any)
			if !ok {
				continue
			}
			entryType, _ := node["LedgerEntryType"].(string)
			if entryType == "" {
				continue
			}
			final, _ := node["FinalFields"].(map[string]any)
			prev, _ := node["PreviousFields"].(map[string]any)
			created, _ := node["NewFields"].(map[string]any)
			nodes = append(nodes, AffectedNode{
				NodeType:        kind,
				LedgerEntryType: entryType,
				FinalFields:     final,
				PreviousFields:  prev,
				NewFields:       created,
			})
			break
		}
	}
	return nodes
}

// fields returns the state of the entry after the transaction, falling
// back to NewFields for created entries.
func (n AffectedNode) fields() map[string]any {
	if n.FinalFields != nil {
		return n.FinalFields
	}
	return n.NewFields
}

// balanceStrings returns the before and after balance representations of
// the entry. pick extracts the balance from a field set. ok is false when
// the node carries no usable balance.
func (n AffectedNode) balanceStrings(pick func(map[string]any) (string, bool)) (before string, after string, ok bool) {
	switch n.NodeType {
	case NODE_CREATED:
		after, ok = pick(n.fields())
		return "0", after, ok
	case NODE_DELETED:
		before, ok = pick(n.PreviousFields)
		if !ok {
			before, ok = pick(n.FinalFields)
		}
		return before, "0", ok
	default:
		after, ok = pick(n.FinalFields)
		if !ok {
			return "", "", false
		}
		before, found := pick(n.PreviousFields)
		if !found {
			// Balance untouched by this transaction
			before = after
		}
		return before, after, true
	}
}

func dropsBalance(fields map[string]any) (string, bool) {
	if fields == nil {
		return "", false
	}
	s, ok := fields["Balance"].(string)
	return s, ok && s != ""
}

func trustLineBalance(fields map[string]any) (string, bool) {
	if fields == nil {
		return "", false
	}
	bal, ok := fields["Balance"].(map[string]any)
	if !ok {
		return "", false
	}
	s, ok := bal["value"].(string)
	return s, ok && s != ""
}

func limitIssuer(fields map[string]any, key string) string {
	if fields == nil {
		return ""
	}
	limit, _ := fields[key].(map[string]any)
	issuer, _ := limit["issuer"].(string)
	return issuer
}

func trustLineCurrency(fields map[string]any) string {
	if fields == nil {
		return ""
	}
	if bal, ok := fields["Balance"].(map[string]any); ok {
		if c, _ := bal["currency"].(string); c != "" {
			return c
		}
	}
	for _, key := range []string{"LowLimit", "HighLimit"} {
		if limit, ok := fields[key].(map[string]any); ok {
			if c, _ := limit["currency"].(string); c != "" {
				return c
			}
		}
	}
	return ""
}
