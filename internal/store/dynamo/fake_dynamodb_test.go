package dynamo

import (
	"context"
	"errors"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeDynamo records every request and answers with the per-method hooks.
// A nil hook returns an empty output.
type fakeDynamo struct {
	mu sync.Mutex

	putItem   func(*dyn.PutItemInput) (*dyn.PutItemOutput, error)
	getItem   func(*dyn.GetItemInput) (*dyn.GetItemOutput, error)
	update    func(*dyn.UpdateItemInput) (*dyn.UpdateItemOutput, error)
	scan      func(*dyn.ScanInput) (*dyn.ScanOutput, error)
	transact  func(*dyn.TransactWriteItemsInput) (*dyn.TransactWriteItemsOutput, error)
	puts      []*dyn.PutItemInput
	updates   []*dyn.UpdateItemInput
	scans     []dyn.ScanInput
	transacts []*dyn.TransactWriteItemsInput
}

func (f *fakeDynamo) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts = append(f.puts, params)
	if f.putItem == nil {
		return &dyn.PutItemOutput{}, nil
	}
	return f.putItem(params)
}

func (f *fakeDynamo) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getItem == nil {
		return &dyn.GetItemOutput{}, nil
	}
	return f.getItem(params)
}

func (f *fakeDynamo) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, params)
	if f.update == nil {
		return &dyn.UpdateItemOutput{}, nil
	}
	return f.update(params)
}

func (f *fakeDynamo) Scan(ctx context.Context, params *dyn.ScanInput, optFns ...func(*dyn.Options)) (*dyn.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	// copy: the store reuses the input across pages
	f.scans = append(f.scans, *params)
	if f.scan == nil {
		return &dyn.ScanOutput{}, nil
	}
	return f.scan(params)
}

func (f *fakeDynamo) TransactWriteItems(ctx context.Context, params *dyn.TransactWriteItemsInput, optFns ...func(*dyn.Options)) (*dyn.TransactWriteItemsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transacts = append(f.transacts, params)
	if f.transact == nil {
		return &dyn.TransactWriteItemsOutput{}, nil
	}
	return f.transact(params)
}

var errBoom = errors.New("boom")

func attrS(v string) types.AttributeValue { return &types.AttributeValueMemberS{Value: v} }

func attrB(v bool) types.AttributeValue { return &types.AttributeValueMemberBOOL{Value: v} }
