package dynamo

import (
	"time"

	"demo/interview/internal/model"
)

// orderItem is the row stored in the orders table. start_date is kept as
// YYYY-MM-DD so BETWEEN compares calendar dates lexically.
type orderItem struct {
	OrderID   string    `dynamodbav:"order_id"` // PK
	StartDate string    `dynamodbav:"start_date"`
	IsActive  bool      `dynamodbav:"is_active"`
	CreatedAt time.Time `dynamodbav:"created_at"`
}

type tagItem struct {
	TagID     string    `dynamodbav:"tag_id"` // PK
	OrderID   string    `dynamodbav:"order_id"`
	Label     string    `dynamodbav:"label"`
	CreatedAt time.Time `dynamodbav:"created_at"`
}

type profileItem struct {
	Email        string     `dynamodbav:"email"` // PK
	ID           string     `dynamodbav:"id"`
	Username     string     `dynamodbav:"username,omitempty"`
	FirstName    string     `dynamodbav:"first_name"`
	LastName     string     `dynamodbav:"last_name"`
	PasswordHash string     `dynamodbav:"password_hash"`
	IsActive     bool       `dynamodbav:"is_active"`
	IsStaff      bool       `dynamodbav:"is_staff"`
	IsSuperuser  bool       `dynamodbav:"is_superuser"`
	IsAdmin      bool       `dynamodbav:"is_admin"`
	DateJoined   time.Time  `dynamodbav:"date_joined"`
	LastLogin    *time.Time `dynamodbav:"last_login,omitempty"`
	Avatar       string     `dynamodbav:"avatar,omitempty"`
}

func toOrderItem(o model.Order) orderItem {
	return orderItem{
		OrderID:   o.ID,
		StartDate: model.FormatDate(o.StartDate),
		IsActive:  o.IsActive,
		CreatedAt: o.CreatedAt,
	}
}

func (it orderItem) toModel() (model.Order, error) {
	start, err := model.ParseDate("start_date", it.StartDate)
	if err != nil {
		return model.Order{}, err
	}
	return model.Order{
		ID:        it.OrderID,
		StartDate: start,
		IsActive:  it.IsActive,
		CreatedAt: it.CreatedAt,
	}, nil
}

func toTagItem(t model.OrderTag) tagItem {
	return tagItem{TagID: t.ID, OrderID: t.OrderID, Label: t.Label, CreatedAt: t.CreatedAt}
}

func (it tagItem) toModel() model.OrderTag {
	return model.OrderTag{ID: it.TagID, OrderID: it.OrderID, Label: it.Label, CreatedAt: it.CreatedAt}
}

func toProfileItem(p model.UserProfile) profileItem {
	return profileItem{
		Email:        p.Email,
		ID:           p.ID,
		Username:     p.Username,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		PasswordHash: p.PasswordHash,
		IsActive:     p.IsActive,
		IsStaff:      p.IsStaff,
		IsSuperuser:  p.IsSuperuser,
		IsAdmin:      p.IsAdmin,
		DateJoined:   p.DateJoined,
		LastLogin:    p.LastLogin,
		Avatar:       p.Avatar,
	}
}

func (it profileItem) toModel() model.UserProfile {
	return model.UserProfile{
		ID:           it.ID,
		Email:        it.Email,
		Username:     it.Username,
		FirstName:    it.FirstName,
		LastName:     it.LastName,
		PasswordHash: it.PasswordHash,
		IsActive:     it.IsActive,
		IsStaff:      it.IsStaff,
		IsSuperuser:  it.IsSuperuser,
		IsAdmin:      it.IsAdmin,
		DateJoined:   it.DateJoined,
		LastLogin:    it.LastLogin,
		Avatar:       it.Avatar,
	}
}
