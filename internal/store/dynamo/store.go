// Package dynamo implements the order and profile repositories on DynamoDB.
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"demo/interview/internal/aws"
	"demo/interview/internal/model"
)

// Tables names the three tables the store reads and writes.
type Tables struct {
	Orders   string
	Tags     string
	Profiles string
}

// maxTransactItems is the DynamoDB limit on actions per TransactWriteItems.
const maxTransactItems = 100

// Store encapsulates operations on the orders, tags and profiles tables.
type Store struct {
	client aws.DynamoDBAPI
	tables Tables
}

func NewStore(client aws.DynamoDBAPI, tables Tables) *Store {
	return &Store{client: client, tables: tables}
}

func (s *Store) CreateOrder(ctx context.Context, o model.Order) error {
	orderMap, err := attributevalue.MarshalMap(toOrderItem(o))
	if err != nil {
		return fmt.Errorf("marshal order item: %w", err)
	}
	items := []types.TransactWriteItem{{
		Put: &types.Put{
			TableName:           &s.tables.Orders,
			Item:                orderMap,
			ConditionExpression: awsString("attribute_not_exists(order_id)"),
		},
	}}
	puts, err := s.tagPuts(o.Tags)
	if err != nil {
		return err
	}
	items = append(items, puts...)

	_, err = s.client.TransactWriteItems(ctx, &dyn.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		if firstConditionFailed(err) {
			return fmt.Errorf("order %s already exists: %w", o.ID, err)
		}
		return fmt.Errorf("transact write: %w", err)
	}
	return nil
}

// UpsertOrder writes the order and replaces its tags in one transaction.
// Stale tags that do not fit under the transaction item limit are deleted
// first in separate batches; a retried upsert finishes the job.
func (s *Store) UpsertOrder(ctx context.Context, o model.Order) error {
	created, err := attributevalue.Marshal(o.CreatedAt)
	if err != nil {
		return fmt.Errorf("marshal created_at: %w", err)
	}
	puts, err := s.tagPuts(o.Tags)
	if err != nil {
		return err
	}
	if len(puts)+1 > maxTransactItems {
		return fmt.Errorf("upsert order: %d tags exceed transaction limit", len(puts))
	}

	old, err := s.tagsForOrder(ctx, o.ID)
	if err != nil {
		return err
	}
	deletes := make([]types.TransactWriteItem, 0, len(old))
	for _, t := range old {
		deletes = append(deletes, types.TransactWriteItem{
			Delete: &types.Delete{
				TableName: &s.tables.Tags,
				Key:       map[string]types.AttributeValue{"tag_id": &types.AttributeValueMemberS{Value: t.ID}},
			},
		})
	}

	room := maxTransactItems - 1 - len(puts)
	for len(deletes) > room {
		n := min(len(deletes)-room, maxTransactItems)
		if _, err := s.client.TransactWriteItems(ctx, &dyn.TransactWriteItemsInput{TransactItems: deletes[:n]}); err != nil {
			return fmt.Errorf("delete stale tags: %w", err)
		}
		deletes = deletes[n:]
	}

	// is_active is only set for a new item; an existing value is never touched.
	items := []types.TransactWriteItem{{
		Update: &types.Update{
			TableName: &s.tables.Orders,
			Key:       orderKey(o.ID),
			UpdateExpression: awsString(
				"SET start_date = :sd, created_at = if_not_exists(created_at, :ca), is_active = if_not_exists(is_active, :active)"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":sd":     &types.AttributeValueMemberS{Value: model.FormatDate(o.StartDate)},
				":ca":     created,
				":active": &types.AttributeValueMemberBOOL{Value: true},
			},
		},
	}}
	items = append(items, deletes...)
	items = append(items, puts...)
	if _, err := s.client.TransactWriteItems(ctx, &dyn.TransactWriteItemsInput{TransactItems: items}); err != nil {
		return fmt.Errorf("upsert order: %w", err)
	}
	return nil
}

func (s *Store) tagPuts(tags []model.OrderTag) ([]types.TransactWriteItem, error) {
	out := make([]types.TransactWriteItem, 0, len(tags))
	for _, t := range tags {
		m, err := attributevalue.MarshalMap(toTagItem(t))
		if err != nil {
			return nil, fmt.Errorf("marshal tag item: %w", err)
		}
		out = append(out, types.TransactWriteItem{Put: &types.Put{TableName: &s.tables.Tags, Item: m}})
	}
	return out, nil
}

// GetOrder fetches an order by order_id. ok is false when it does not exist.
func (s *Store) GetOrder(ctx context.Context, id string) (model.Order, bool, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tables.Orders,
		Key:       orderKey(id),
	})
	if err != nil {
		return model.Order{}, false, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return model.Order{}, false, nil
	}
	o, err := unmarshalOrder(out.Item)
	if err != nil {
		return model.Order{}, false, err
	}
	if o.Tags, err = s.tagsForOrder(ctx, id); err != nil {
		return model.Order{}, false, err
	}
	return o, true, nil
}

func (s *Store) ListOrders(ctx context.Context) ([]model.Order, error) {
	return s.scanOrders(ctx, &dyn.ScanInput{TableName: &s.tables.Orders})
}

func (s *Store) ListOrdersInRange(ctx context.Context, from, to time.Time) ([]model.Order, error) {
	return s.scanOrders(ctx, &dyn.ScanInput{
		TableName:        &s.tables.Orders,
		FilterExpression: awsString("start_date BETWEEN :from AND :to"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":from": &types.AttributeValueMemberS{Value: model.FormatDate(from)},
			":to":   &types.AttributeValueMemberS{Value: model.FormatDate(to)},
		},
	})
}

func (s *Store) scanOrders(ctx context.Context, input *dyn.ScanInput) ([]model.Order, error) {
	raw, err := s.scanAll(ctx, input)
	if err != nil {
		return nil, err
	}
	out := make([]model.Order, 0, len(raw))
	for _, item := range raw {
		o, err := unmarshalOrder(item)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if len(out) == 0 {
		return out, nil
	}
	slices.SortFunc(out, func(a, b model.Order) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	tags, err := s.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	byOrder := make(map[string][]model.OrderTag, len(out))
	for _, t := range tags {
		byOrder[t.OrderID] = append(byOrder[t.OrderID], t)
	}
	for i := range out {
		out[i].Tags = byOrder[out[i].ID]
	}
	return out, nil
}

// DeactivateOrder clears is_active with a conditional update and reads the
// previous flag from the returned old image.
func (s *Store) DeactivateOrder(ctx context.Context, id string) (model.Order, bool, error) {
	out, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName:        &s.tables.Orders,
		Key:              orderKey(id),
		UpdateExpression: awsString("SET is_active = :inactive"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":inactive": &types.AttributeValueMemberBOOL{Value: false},
		},
		ConditionExpression: awsString("attribute_exists(order_id)"),
		ReturnValues:        types.ReturnValueAllOld,
	})
	if err != nil {
		if isConditionFailed(err) {
			return model.Order{}, false, model.ErrOrderNotFound
		}
		return model.Order{}, false, fmt.Errorf("deactivate order: %w", err)
	}

	o, err := unmarshalOrder(out.Attributes)
	if err != nil {
		return model.Order{}, false, err
	}
	wasActive := o.IsActive
	o.IsActive = false
	if o.Tags, err = s.tagsForOrder(ctx, id); err != nil {
		return model.Order{}, false, err
	}
	return o, wasActive, nil
}

// CreateTag writes the tag in a transaction guarded by a condition check on
// the parent order.
func (s *Store) CreateTag(ctx context.Context, t model.OrderTag) error {
	puts, err := s.tagPuts([]model.OrderTag{t})
	if err != nil {
		return err
	}
	items := append([]types.TransactWriteItem{{
		ConditionCheck: &types.ConditionCheck{
			TableName:           &s.tables.Orders,
			Key:                 orderKey(t.OrderID),
			ConditionExpression: awsString("attribute_exists(order_id)"),
		},
	}}, puts...)

	_, err = s.client.TransactWriteItems(ctx, &dyn.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		if firstConditionFailed(err) {
			return model.ErrOrderNotFound
		}
		return fmt.Errorf("transact write: %w", err)
	}
	return nil
}

func (s *Store) ListTags(ctx context.Context) ([]model.OrderTag, error) {
	return s.scanTags(ctx, &dyn.ScanInput{TableName: &s.tables.Tags})
}

func (s *Store) tagsForOrder(ctx context.Context, orderID string) ([]model.OrderTag, error) {
	return s.scanTags(ctx, &dyn.ScanInput{
		TableName:        &s.tables.Tags,
		FilterExpression: awsString("order_id = :oid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":oid": &types.AttributeValueMemberS{Value: orderID},
		},
	})
}

func (s *Store) scanTags(ctx context.Context, input *dyn.ScanInput) ([]model.OrderTag, error) {
	raw, err := s.scanAll(ctx, input)
	if err != nil {
		return nil, err
	}
	var items []tagItem
	if err := attributevalue.UnmarshalListOfMaps(raw, &items); err != nil {
		return nil, fmt.Errorf("unmarshal tags: %w", err)
	}
	out := make([]model.OrderTag, 0, len(items))
	for _, it := range items {
		out = append(out, it.toModel())
	}
	slices.SortFunc(out, func(a, b model.OrderTag) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

// scanAll follows LastEvaluatedKey until the table is exhausted.
func (s *Store) scanAll(ctx context.Context, input *dyn.ScanInput) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	for {
		out, err := s.client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", *input.TableName, err)
		}
		items = append(items, out.Items...)
		if len(out.LastEvaluatedKey) == 0 {
			return items, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

func unmarshalOrder(item map[string]types.AttributeValue) (model.Order, error) {
	var it orderItem
	if err := attributevalue.UnmarshalMap(item, &it); err != nil {
		return model.Order{}, fmt.Errorf("unmarshal order: %w", err)
	}
	return it.toModel()
}

func orderKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{"order_id": &types.AttributeValueMemberS{Value: id}}
}

func isConditionFailed(err error) bool {
	var ae smithy.APIError
	return errors.As(err, &ae) && ae.ErrorCode() == "ConditionalCheckFailedException"
}

// firstConditionFailed reports whether a transaction was canceled because its
// first item's condition did not hold.
func firstConditionFailed(err error) bool {
	var tce *types.TransactionCanceledException
	if !errors.As(err, &tce) || len(tce.CancellationReasons) == 0 {
		return false
	}
	code := tce.CancellationReasons[0].Code
	return code != nil && *code == "ConditionalCheckFailed"
}

func awsString(s string) *string { return &s }
