package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/client/data"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/client/storage"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/models"
)

type profileInput struct {
	Username    string
	DisplayName string
	Bio         string
	BirthDate   string
	Pairings    []string
}

type ratingInput struct {
	ProductID   string
	ProductType string
	Review      string
	FlavorNotes []string
	Score       float64
}

type collectionInput struct {
	ProductID   string
	ProductType string
	Location    string
	Notes       string
	Quantity    int
}

// runProfile creates the profile of the logged in user or updates the
// fields that were given
func (c *Cli) runProfile(ctx context.Context, in profileInput) error {
	session, err := c.session(ctx)
	if err != nil {
		return err
	}

	existing, err := c.dataService.List(ctx, storage.Query{
		Table: models.TableUsers,
		Where: map[string]string{"user_id": session.UserID},
		Limit: 1,
	})
	if err != nil {
		return err
	}

	user := &models.User{UserID: session.UserID, Username: session.Username}
	if len(existing) > 0 {
		if err := existing[0].Decode(user); err != nil {
			return err
		}
	}
	if in.Username != "" {
		user.Username = in.Username
	}
	if in.DisplayName != "" {
		user.DisplayName = in.DisplayName
	}
	if in.Bio != "" {
		user.Bio = in.Bio
	}
	if len(in.Pairings) > 0 {
		user.Preferences.Pairings = in.Pairings
	}
	if in.BirthDate != "" {
		birth, err := time.Parse(time.DateOnly, in.BirthDate)
		if err != nil {
			return fmt.Errorf("invalid birth date: %w", err)
		}
		user.BirthDate = birth
		user.AgeVerified = true
	}

	var rec *models.Record
	if len(existing) > 0 {
		rec, err = c.dataService.UpdateProfile(ctx, user)
	} else {
		rec, err = c.dataService.CreateProfile(ctx, user)
	}
	if err != nil {
		return err
	}

	c.io.Printf("✓ Profile saved: %s (%s)\n", user.Username, rec.LocalID)
	return nil
}

func (c *Cli) runPost(ctx context.Context, content, productID, imageURL string) error {
	session, err := c.session(ctx)
	if err != nil {
		return err
	}

	rec, err := c.dataService.CreatePost(ctx, &models.Post{
		UserID:    session.UserID,
		Content:   content,
		ProductID: productID,
		ImageURL:  imageURL,
	})
	if err != nil {
		return err
	}

	c.io.Printf("✓ Post saved: %s\n", rec.LocalID)
	return nil
}

func (c *Cli) runComment(ctx context.Context, postID, content string) error {
	session, err := c.session(ctx)
	if err != nil {
		return err
	}

	rec, err := c.dataService.AddComment(ctx, &models.Comment{
		UserID:  session.UserID,
		PostID:  postID,
		Content: content,
	})
	if err != nil {
		return err
	}

	c.io.Printf("✓ Comment saved: %s\n", rec.LocalID)
	return nil
}

func (c *Cli) runRate(ctx context.Context, in ratingInput) error {
	session, err := c.session(ctx)
	if err != nil {
		return err
	}
	productType, err := models.ParseProductType(in.ProductType)
	if err != nil {
		return err
	}

	rec, err := c.dataService.Rate(ctx, &models.Rating{
		UserID:      session.UserID,
		ProductID:   in.ProductID,
		ProductType: productType,
		Score:       in.Score,
		Review:      in.Review,
		Attributes:  models.Attributes{FlavorNotes: in.FlavorNotes},
	})
	if err != nil {
		return err
	}

	c.io.Printf("✓ Rating saved: %s (%.1f)\n", rec.LocalID, in.Score)
	return nil
}

func (c *Cli) runCollect(ctx context.Context, in collectionInput) error {
	session, err := c.session(ctx)
	if err != nil {
		return err
	}
	productType, err := models.ParseProductType(in.ProductType)
	if err != nil {
		return err
	}

	rec, err := c.dataService.AddToCollection(ctx, &models.CollectionItem{
		UserID:      session.UserID,
		ProductID:   in.ProductID,
		ProductType: productType,
		Quantity:    in.Quantity,
		Location:    in.Location,
		Notes:       in.Notes,
	})
	if err != nil {
		return err
	}

	c.io.Printf("✓ Added to collection: %s\n", rec.LocalID)
	return nil
}

func (c *Cli) runFollow(ctx context.Context, followeeID string) error {
	session, err := c.session(ctx)
	if err != nil {
		return err
	}

	rec, err := c.dataService.Follow(ctx, session.UserID, followeeID)
	if errors.Is(err, data.ErrDuplicate) {
		c.io.Printf("Already following %s\n", followeeID)
		return nil
	}
	if err != nil {
		return err
	}

	c.io.Printf("✓ Following %s (%s)\n", followeeID, rec.LocalID)
	return nil
}
