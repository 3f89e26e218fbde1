package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Table names of the synchronized entities.
const (
	TableUsers           = "users"
	TableProducts        = "products"
	TableCollectionItems = "collection_items"
	TableRatings         = "ratings"
	TablePosts           = "posts"
	TableComments        = "comments"
	TableFollows         = "follows"
)

// ProductType is the catalog category of a product.
type ProductType string

// Supported product types.
const (
	ProductCigar ProductType = "cigar"
	ProductBeer  ProductType = "beer"
	ProductWine  ProductType = "wine"
)

// ParseProductType validates a product type string.
func ParseProductType(s string) (ProductType, error) {
	switch pt := ProductType(strings.ToLower(strings.TrimSpace(s))); pt {
	case ProductCigar, ProductBeer, ProductWine:
		return pt, nil
	default:
		return "", fmt.Errorf("unknown product type %q", s)
	}
}

// Entity is a domain value that can be stored as a local record.
type Entity interface {
	// TableName returns the table the entity belongs to
	TableName() string
	// RecordID returns the client-generated identifier
	RecordID() string
	// IndexFields returns values of the indexed fields
	IndexFields() map[string]string
}

// Attributes is a typed tag bundle attached to products, ratings and profiles.
// Known fields are explicit; Extra carries evolvable key/value metadata.
type Attributes struct {
	Extra       map[string]string `json:"extra,omitempty"`        // произвольные дополнительные поля
	FlavorNotes []string          `json:"flavor_notes,omitempty"` // вкусовые ноты (cedar, leather, ...)
	Occasions   []string          `json:"occasions,omitempty"`    // поводы
	Pairings    []string          `json:"pairings,omitempty"`     // сочетания
}

// User is a user profile.
type User struct {
	BirthDate   time.Time  `json:"birth_date"`
	CreatedAt   time.Time  `json:"created_at"`
	Preferences Attributes `json:"preferences"`
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"` // идентификатор аккаунта из токена
	Username    string     `json:"username"`
	DisplayName string     `json:"display_name"`
	Bio         string     `json:"bio,omitempty"`
	AvatarURL   string     `json:"avatar_url,omitempty"`
	AgeVerified bool       `json:"age_verified"`
}

// Product is a catalog entry for a cigar, beer or wine.
type Product struct {
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
	Attributes    Attributes  `json:"attributes"`
	ID            string      `json:"id"`
	Type          ProductType `json:"type"`
	Name          string      `json:"name"`  // модель или название линейки
	Brand         string      `json:"brand"` // бренд / пивоварня / винодельня
	Size          string      `json:"size,omitempty"`
	Wrapper       string      `json:"wrapper,omitempty"`
	Strength      string      `json:"strength,omitempty"`
	Origin        string      `json:"origin,omitempty"`
	Style         string      `json:"style,omitempty"`
	Region        string      `json:"region,omitempty"`
	Varietal      string      `json:"varietal,omitempty"`
	Length        float64     `json:"length,omitempty"` // дюймы
	ABV           float64     `json:"abv,omitempty"`
	AverageRating float64     `json:"average_rating"`
	RingGauge     int         `json:"ring_gauge,omitempty"`
	Vintage       int         `json:"vintage,omitempty"`
	RatingCount   int         `json:"rating_count"`
}

// CollectionItem is a product in a user's humidor or cellar.
type CollectionItem struct {
	CreatedAt   time.Time   `json:"created_at"`
	ID          string      `json:"id"`
	UserID      string      `json:"user_id"`
	ProductID   string      `json:"product_id"`
	ProductType ProductType `json:"product_type"`
	Location    string      `json:"location,omitempty"`
	Notes       string      `json:"notes,omitempty"`
	Quantity    int         `json:"quantity"`
}

// Rating is a user's review of a product.
type Rating struct {
	CreatedAt   time.Time   `json:"created_at"`
	Attributes  Attributes  `json:"attributes"`
	ID          string      `json:"id"`
	UserID      string      `json:"user_id"`
	ProductID   string      `json:"product_id"`
	ProductType ProductType `json:"product_type"`
	Review      string      `json:"review,omitempty"`
	Score       float64     `json:"score"`
}

// Post is a social feed post.
type Post struct {
	CreatedAt    time.Time `json:"created_at"`
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Content      string    `json:"content"`
	ImageURL     string    `json:"image_url,omitempty"`
	ProductID    string    `json:"product_id,omitempty"`
	LikeCount    int       `json:"like_count"`
	CommentCount int       `json:"comment_count"`
}

// Comment is a reply on a post.
type Comment struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	PostID    string    `json:"post_id"`
	Content   string    `json:"content"`
}

// Follow is a follower -> followee edge.
type Follow struct {
	CreatedAt  time.Time `json:"created_at"`
	ID         string    `json:"id"`
	FollowerID string    `json:"follower_id"`
	FolloweeID string    `json:"followee_id"`
}

// TableName implements Entity.
func (u *User) TableName() string { return TableUsers }

// RecordID implements Entity.
func (u *User) RecordID() string { return u.ID }

// IndexFields implements Entity.
func (u *User) IndexFields() map[string]string {
	return map[string]string{"user_id": u.UserID}
}

// TableName implements Entity.
func (p *Product) TableName() string { return TableProducts }

// RecordID implements Entity.
func (p *Product) RecordID() string { return p.ID }

// IndexFields implements Entity.
func (p *Product) IndexFields() map[string]string {
	return map[string]string{"product_type": string(p.Type)}
}

// TableName implements Entity.
func (c *CollectionItem) TableName() string { return TableCollectionItems }

// RecordID implements Entity.
func (c *CollectionItem) RecordID() string { return c.ID }

// IndexFields implements Entity.
func (c *CollectionItem) IndexFields() map[string]string {
	return map[string]string{
		"user_id":      c.UserID,
		"product_id":   c.ProductID,
		"product_type": string(c.ProductType),
	}
}

// TableName implements Entity.
func (r *Rating) TableName() string { return TableRatings }

// RecordID implements Entity.
func (r *Rating) RecordID() string { return r.ID }

// IndexFields implements Entity.
func (r *Rating) IndexFields() map[string]string {
	return map[string]string{
		"user_id":      r.UserID,
		"product_id":   r.ProductID,
		"product_type": string(r.ProductType),
	}
}

// TableName implements Entity.
func (p *Post) TableName() string { return TablePosts }

// RecordID implements Entity.
func (p *Post) RecordID() string { return p.ID }

// IndexFields implements Entity.
func (p *Post) IndexFields() map[string]string {
	return map[string]string{"user_id": p.UserID, "product_id": p.ProductID}
}

// TableName implements Entity.
func (c *Comment) TableName() string { return TableComments }

// RecordID implements Entity.
func (c *Comment) RecordID() string { return c.ID }

// IndexFields implements Entity.
func (c *Comment) IndexFields() map[string]string {
	return map[string]string{"user_id": c.UserID, "post_id": c.PostID}
}

// TableName implements Entity.
func (f *Follow) TableName() string { return TableFollows }

// RecordID implements Entity.
func (f *Follow) RecordID() string { return f.ID }

// IndexFields implements Entity.
func (f *Follow) IndexFields() map[string]string {
	return map[string]string{"follower_id": f.FollowerID, "followee_id": f.FolloweeID}
}

// SyncedTables lists tables whose records are pushed to the server.
var SyncedTables = []string{
	TableUsers,
	TableCollectionItems,
	TableRatings,
	TablePosts,
	TableComments,
	TableFollows,
}

// IsSyncedTable reports whether records of the table go through the outbox.
func IsSyncedTable(table string) bool {
	for _, t := range SyncedTables {
		if t == table {
			return true
		}
	}
	return false
}

// NewEntity returns an empty entity for the table.
func NewEntity(table string) (Entity, error) {
	switch table {
	case TableUsers:
		return &User{}, nil
	case TableProducts:
		return &Product{}, nil
	case TableCollectionItems:
		return &CollectionItem{}, nil
	case TableRatings:
		return &Rating{}, nil
	case TablePosts:
		return &Post{}, nil
	case TableComments:
		return &Comment{}, nil
	case TableFollows:
		return &Follow{}, nil
	default:
		return nil, fmt.Errorf("unknown table %q", table)
	}
}

// DecodeEntity unmarshals JSON fields into the entity type of the table.
func DecodeEntity(table string, data []byte) (Entity, error) {
	e, err := NewEntity(table)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, e); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", table, err)
	}
	return e, nil
}

// ProductFilter selects catalog products. Brand and Name match as
// case-insensitive substrings; Query searches brand and name together.
type ProductFilter struct {
	Type   ProductType
	Brand  string
	Name   string
	Size   string
	Query  string
	Limit  int
	Offset int
}
