package game

import "github.com/erazemk/zbirka/internal/model"

// State is a snapshot of the player's game for rendering.
type State struct {
	Balance    int64           `json:"balance"`
	Cost       int64           `json:"cost"`
	Score      int             `json:"score"`
	SortOrder  model.SortOrder `json:"sortOrder"`
	Stage      Stage           `json:"stage"`
	Collection []model.Pokemon `json:"collection"`
}

// patch is a single change to the in-memory mirror, applied only after the
// store has confirmed the corresponding write.
type patch struct {
	balance    *int64
	add        *model.Pokemon
	update     *model.Pokemon
	collection []model.Pokemon
}

func setBalance(v int64) patch {
	return patch{balance: &v}
}

// apply merges p into the mirror. The caller holds c.mu.
func (c *Coordinator) apply(p patch) {
	if p.collection != nil {
		c.collection = p.collection
	}
	if p.balance != nil {
		c.balance = *p.balance
	}
	if p.add != nil {
		c.collection = append(c.collection, *p.add)
	}
	if p.update != nil {
		for i := range c.collection {
			if c.collection[i].ID == p.update.ID {
				c.collection[i] = *p.update
				break
			}
		}
	}
}

func (c *Coordinator) commit(p patch) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.apply(p)
}
