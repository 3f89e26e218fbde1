package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/client/storage"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/models"
)

// ownerField is the indexed field holding the owner of a table's records
var ownerField = map[string]string{
	models.TableUsers:           "user_id",
	models.TableCollectionItems: "user_id",
	models.TableRatings:         "user_id",
	models.TablePosts:           "user_id",
	models.TableComments:        "user_id",
	models.TableFollows:         "follower_id",
}

func checkTable(table string) error {
	if !models.IsSyncedTable(table) {
		return fmt.Errorf("unknown table: %s. Use: users, collection_items, ratings, posts, comments or follows", table)
	}
	return nil
}

// recordStates derives the lifecycle state of each record from its queue entries
func (c *Cli) recordStates(ctx context.Context, recs []*models.Record) (map[string]models.RecordState, error) {
	states := make(map[string]models.RecordState, len(recs))
	err := c.store.View(ctx, func(tx storage.Tx) error {
		for _, rec := range recs {
			entries, err := tx.EntriesFor(rec.Table, rec.LocalID)
			if err != nil {
				return err
			}
			states[rec.Key()] = models.StateOf(rec, entries)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read queue: %w", err)
	}
	return states, nil
}

// summarize returns a one-line description of a record
func summarize(rec *models.Record) string {
	e, err := models.DecodeEntity(rec.Table, rec.Fields)
	if err != nil {
		return "<" + err.Error() + ">"
	}

	switch v := e.(type) {
	case *models.User:
		return fmt.Sprintf("@%s %s", v.Username, v.DisplayName)
	case *models.Post:
		return fmt.Sprintf("%s [%d comments]", truncate(v.Content, 48), v.CommentCount)
	case *models.Comment:
		return fmt.Sprintf("on %s: %s", v.PostID, truncate(v.Content, 40))
	case *models.Rating:
		return fmt.Sprintf("%s %s %.1f/5", v.ProductType, v.ProductID, v.Score)
	case *models.CollectionItem:
		return fmt.Sprintf("%s %s x%d", v.ProductType, v.ProductID, v.Quantity)
	case *models.Follow:
		return fmt.Sprintf("%s -> %s", v.FollowerID, v.FolloweeID)
	default:
		return rec.LocalID
	}
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
