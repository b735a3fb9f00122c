package dynamo

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"demo/interview/internal/model"
)

// CreateProfile puts the profile keyed by email. Username uniqueness is
// checked with a scan before the write and is not atomic with it.
func (s *Store) CreateProfile(ctx context.Context, p model.UserProfile) error {
	if p.Username != "" {
		taken, err := s.scanAll(ctx, &dyn.ScanInput{
			TableName:        &s.tables.Profiles,
			FilterExpression: awsString("username = :u"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":u": &types.AttributeValueMemberS{Value: p.Username},
			},
		})
		if err != nil {
			return err
		}
		if len(taken) > 0 {
			return model.ErrProfileExists
		}
	}

	item, err := attributevalue.MarshalMap(toProfileItem(p))
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           &s.tables.Profiles,
		Item:                item,
		ConditionExpression: awsString("attribute_not_exists(email)"),
	})
	if err != nil {
		if isConditionFailed(err) {
			return model.ErrProfileExists
		}
		return fmt.Errorf("put item: %w", err)
	}
	return nil
}

func (s *Store) GetProfileByEmail(ctx context.Context, email string) (model.UserProfile, bool, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tables.Profiles,
		Key:       map[string]types.AttributeValue{"email": &types.AttributeValueMemberS{Value: email}},
	})
	if err != nil {
		return model.UserProfile{}, false, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return model.UserProfile{}, false, nil
	}
	var it profileItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return model.UserProfile{}, false, fmt.Errorf("unmarshal profile: %w", err)
	}
	return it.toModel(), true, nil
}

// ListProfiles scans the table and applies the filter in process.
func (s *Store) ListProfiles(ctx context.Context, f model.ProfileFilter) ([]model.UserProfile, error) {
	raw, err := s.scanAll(ctx, &dyn.ScanInput{TableName: &s.tables.Profiles})
	if err != nil {
		return nil, err
	}
	var items []profileItem
	if err := attributevalue.UnmarshalListOfMaps(raw, &items); err != nil {
		return nil, fmt.Errorf("unmarshal profiles: %w", err)
	}

	out := []model.UserProfile{}
	for _, it := range items {
		if p := it.toModel(); f.Match(p) {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b model.UserProfile) int { return strings.Compare(a.Email, b.Email) })
	return out, nil
}
