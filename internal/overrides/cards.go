package overrides

import "github.com/jonathan/persona-engine/internal/types"

// NormalizeCards fills the display fields every card renderer requires. It
// runs only for the cards target (highlights and reads have different
// required shapes) and never overwrites a populated field.
func NormalizeCards(list []types.Item) []types.Item {
	out := make([]types.Item, len(list))
	for i, item := range list {
		if item == nil {
			out[i] = item
			continue
		}
		card := item.Clone()
		if card.Kind() == "" {
			card["kind"] = "card"
		}
		if _, ok := card["tags"]; !ok {
			card["tags"] = []any{}
		}
		if title, ok := card["title"].(string); !ok || title == "" {
			if id := card.ID(); id != "" {
				card["title"] = id
			}
		}
		out[i] = card
	}
	return out
}
