package validation

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/models"
)

const (
	// MinimumAge минимальный возраст для табака и алкоголя
	MinimumAge = 21
	// MaxPostLength максимальная длина поста в символах
	MaxPostLength = 2000
	// MaxCommentLength максимальная длина комментария
	MaxCommentLength = 500
	// MaxReviewLength максимальная длина отзыва
	MaxReviewLength = 5000
	// MaxTags максимальное количество тегов в каждом списке Attributes
	MaxTags = 20
	// MaxTagLength максимальная длина одного тега
	MaxTagLength = 50
)

// ValidateAge checks that the birth date satisfies the age gate at now.
func ValidateAge(birthDate, now time.Time) error {
	if birthDate.IsZero() {
		return fmt.Errorf("%w: birth date is required", ErrInvalid)
	}
	if birthDate.After(now) {
		return fmt.Errorf("%w: birth date is in the future", ErrInvalid)
	}
	if Age(birthDate, now) < MinimumAge {
		return fmt.Errorf("%w: must be at least %d years old", ErrInvalid, MinimumAge)
	}
	return nil
}

// Age returns full years between birthDate and now.
func Age(birthDate, now time.Time) int {
	years := now.Year() - birthDate.Year()
	if now.Month() < birthDate.Month() ||
		(now.Month() == birthDate.Month() && now.Day() < birthDate.Day()) {
		years--
	}
	return years
}

// ValidateUser checks a profile. AgeVerified requires a passing age gate.
func ValidateUser(u *models.User, now time.Time) error {
	if err := requireID("user", u.ID); err != nil {
		return err
	}
	if err := ValidateUsername(u.Username); err != nil {
		return err
	}
	if u.AgeVerified {
		if err := ValidateAge(u.BirthDate, now); err != nil {
			return err
		}
	}
	return ValidateAttributes(&u.Preferences)
}

// ValidateProduct checks a catalog product.
func ValidateProduct(p *models.Product) error {
	if _, err := models.ParseProductType(string(p.Type)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: product name is required", ErrInvalid)
	}
	if strings.TrimSpace(p.Brand) == "" {
		return fmt.Errorf("%w: product brand is required", ErrInvalid)
	}
	if p.RingGauge < 0 || p.Length < 0 || p.ABV < 0 || p.ABV > 100 {
		return fmt.Errorf("%w: product measurements out of range", ErrInvalid)
	}
	return ValidateAttributes(&p.Attributes)
}

// ValidateRating checks a rating. Scores run from 1 to 5 in half steps.
func ValidateRating(r *models.Rating) error {
	if err := requireID("rating", r.ID); err != nil {
		return err
	}
	if r.ProductID == "" {
		return fmt.Errorf("%w: rating product_id is required", ErrInvalid)
	}
	if _, err := models.ParseProductType(string(r.ProductType)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if r.Score < 1 || r.Score > 5 || r.Score*2 != float64(int(r.Score*2)) {
		return fmt.Errorf("%w: score must be between 1 and 5 in steps of 0.5", ErrInvalid)
	}
	if utf8.RuneCountInString(r.Review) > MaxReviewLength {
		return fmt.Errorf("%w: review must not exceed %d characters", ErrInvalid, MaxReviewLength)
	}
	return ValidateAttributes(&r.Attributes)
}

// ValidatePost checks a feed post.
func ValidatePost(p *models.Post) error {
	if err := requireID("post", p.ID); err != nil {
		return err
	}
	return validateText("post content", p.Content, MaxPostLength)
}

// ValidateComment checks a comment.
func ValidateComment(c *models.Comment) error {
	if err := requireID("comment", c.ID); err != nil {
		return err
	}
	if c.PostID == "" {
		return fmt.Errorf("%w: comment post_id is required", ErrInvalid)
	}
	return validateText("comment content", c.Content, MaxCommentLength)
}

// ValidateFollow checks a follow edge.
func ValidateFollow(f *models.Follow) error {
	if err := requireID("follow", f.ID); err != nil {
		return err
	}
	if f.FollowerID == "" || f.FolloweeID == "" {
		return fmt.Errorf("%w: follower_id and followee_id are required", ErrInvalid)
	}
	if f.FollowerID == f.FolloweeID {
		return fmt.Errorf("%w: cannot follow yourself", ErrInvalid)
	}
	return nil
}

// ValidateCollectionItem checks a humidor/cellar entry.
func ValidateCollectionItem(c *models.CollectionItem) error {
	if err := requireID("collection item", c.ID); err != nil {
		return err
	}
	if c.ProductID == "" {
		return fmt.Errorf("%w: collection item product_id is required", ErrInvalid)
	}
	if _, err := models.ParseProductType(string(c.ProductType)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.Quantity < 1 {
		return fmt.Errorf("%w: quantity must be positive", ErrInvalid)
	}
	return nil
}

// ValidateAttributes checks tag list sizes and normalizes tags to lower case.
func ValidateAttributes(a *models.Attributes) error {
	lists := map[string]*[]string{
		"flavor_notes": &a.FlavorNotes,
		"occasions":    &a.Occasions,
		"pairings":     &a.Pairings,
	}
	for name, list := range lists {
		if len(*list) > MaxTags {
			return fmt.Errorf("%w: %s must not exceed %d entries", ErrInvalid, name, MaxTags)
		}
		for i, tag := range *list {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag == "" || utf8.RuneCountInString(tag) > MaxTagLength {
				return fmt.Errorf("%w: %s contains an empty or oversized tag", ErrInvalid, name)
			}
			(*list)[i] = tag
		}
	}
	if len(a.Extra) > MaxTags {
		return fmt.Errorf("%w: extra must not exceed %d keys", ErrInvalid, MaxTags)
	}
	return nil
}

func requireID(kind, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: %s id is required", ErrInvalid, kind)
	}
	return nil
}

func validateText(field, text string, max int) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: %s cannot be empty", ErrInvalid, field)
	}
	if utf8.RuneCountInString(text) > max {
		return fmt.Errorf("%w: %s must not exceed %d characters", ErrInvalid, field, max)
	}
	return nil
}

// ValidateEntity dispatches to the validator of the entity type.
func ValidateEntity(e models.Entity, now time.Time) error {
	switch v := e.(type) {
	case *models.User:
		return ValidateUser(v, now)
	case *models.Product:
		return ValidateProduct(v)
	case *models.CollectionItem:
		return ValidateCollectionItem(v)
	case *models.Rating:
		return ValidateRating(v)
	case *models.Post:
		return ValidatePost(v)
	case *models.Comment:
		return ValidateComment(v)
	case *models.Follow:
		return ValidateFollow(v)
	default:
		return fmt.Errorf("%w: unsupported entity %T", ErrInvalid, e)
	}
}
