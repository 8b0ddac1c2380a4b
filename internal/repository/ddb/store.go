// Package ddb implements repository.Store on a DynamoDB table keyed by user_id.
// This is the only layer that knows about DynamoDB specifics.
package ddb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"reminer-backend/internal/domain"
	"reminer-backend/internal/repository"
	appErrors "reminer-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

const (
	keyAttr     = "user_id"
	versionAttr = "record_version"
)

// DynamoDBAPI is the subset of the DynamoDB client the store uses.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// Store is the DynamoDB backed repository.Store.
type Store struct {
	client    DynamoDBAPI
	tableName string
	logger    *zap.Logger
}

// NewStore creates a Store for tableName.
func NewStore(client DynamoDBAPI, tableName string, logger *zap.Logger) *Store {
	return &Store{client: client, tableName: tableName, logger: logger}
}

var _ repository.Store = (*Store)(nil)

func (s *Store) key(userID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{keyAttr: &types.AttributeValueMemberS{Value: userID}}
}

// Load reads the user row with a consistent read so the version it returns
// is the one a following conditional write will be checked against.
func (s *Store) Load(ctx context.Context, userID string) (*domain.UserRecord, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            s.key(userID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to get user record")
	}
	if len(out.Item) == 0 {
		return nil, repository.ErrNotFound{Resource: "user", ID: userID}
	}

	var rec domain.UserRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, appErrors.Wrap(err, "failed to unmarshal user record")
	}
	return &rec, nil
}

func (s *Store) Save(ctx context.Context, record *domain.UserRecord) error {
	rec := record.Clone()
	if rec.Apps == nil {
		rec.Apps = []domain.AppRecord{}
	}
	for i := range rec.Apps {
		normalizeApp(&rec.Apps[i])
	}
	rec.Version = 1

	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return appErrors.Wrap(err, "failed to marshal user record")
	}

	cond := expression.AttributeNotExists(expression.Name(keyAttr))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return appErrors.Wrap(err, "failed to build condition")
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(s.tableName),
		Item:                      item,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		if isConditionFailed(err) {
			return repository.ErrConflict{Resource: "user", ID: rec.UserID, Reason: "already exists"}
		}
		return appErrors.Wrap(err, "failed to put user record")
	}
	return nil
}

// AppendChild appends with list_append. When the target list does not exist
// DynamoDB rejects the document path with a ValidationException, and the list
// is created instead, guarded so only one concurrent creator can win. Any
// other ValidationException is returned as is.
func (s *Store) AppendChild(ctx context.Context, userID string, path repository.Path, item any, expectedVersion int64) error {
	list, err := toList(item)
	if err != nil {
		return err
	}
	target := expression.Name(path.String())

	update := expression.Set(target, expression.ListAppend(target, expression.Value(list)))
	err = s.update(ctx, userID, path, update, s.baseCondition(path, expectedVersion), expectedVersion)
	if err == nil || !isMissingPath(err) {
		return err
	}

	s.logger.Debug("list missing, creating it",
		zap.String("user_id", userID),
		zap.String("path", path.String()))

	create := expression.Set(target, expression.Value(list))
	absent := expression.Or(
		expression.AttributeNotExists(target),
		expression.AttributeType(target, expression.Null),
	)
	err = s.update(ctx, userID, path, create, s.baseCondition(path, expectedVersion).And(absent), expectedVersion)
	if err != nil && isMissingPath(err) {
		// The parent slot vanished between the two writes.
		return repository.ErrConflict{Resource: "user", ID: userID, Reason: fmt.Sprintf("path %s does not exist", path)}
	}
	return err
}

func (s *Store) ReplaceAt(ctx context.Context, userID string, path repository.Path, index int, item any, expectedVersion int64) error {
	if index < 0 {
		return repository.ErrConflict{Resource: "user", ID: userID, Reason: fmt.Sprintf("negative index %d", index)}
	}
	if err := checkItem(path, item); err != nil {
		return err
	}
	slot := expression.Name(fmt.Sprintf("%s[%d]", path, index))
	update := expression.Set(slot, expression.Value(normalizeItem(item)))
	cond := s.baseCondition(path, expectedVersion).And(expression.AttributeExists(slot))
	return s.update(ctx, userID, path, update, cond, expectedVersion)
}

func (s *Store) ReplaceList(ctx context.Context, userID string, path repository.Path, items any, expectedVersion int64) error {
	list, err := toList(items)
	if err != nil {
		return err
	}
	update := expression.Set(expression.Name(path.String()), expression.Value(list))
	return s.update(ctx, userID, path, update, s.baseCondition(path, expectedVersion), expectedVersion)
}

// baseCondition requires the row to exist at expectedVersion and, for a
// reviews path, the owning app slot to exist.
func (s *Store) baseCondition(path repository.Path, expectedVersion int64) expression.ConditionBuilder {
	version := expression.Name(versionAttr)
	versionMatches := version.Equal(expression.Value(expectedVersion))
	if expectedVersion == 0 {
		versionMatches = expression.Or(expression.AttributeNotExists(version), versionMatches)
	}
	cond := expression.AttributeExists(expression.Name(keyAttr)).And(versionMatches)
	if !path.IsApps() {
		cond = cond.And(expression.AttributeExists(expression.Name(fmt.Sprintf("apps[%d]", path.AppIndex))))
	}
	return cond
}

func (s *Store) update(ctx context.Context, userID string, path repository.Path, update expression.UpdateBuilder, cond expression.ConditionBuilder, expectedVersion int64) error {
	update = update.Set(expression.Name(versionAttr), expression.Value(expectedVersion+1))

	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(cond).Build()
	if err != nil {
		return appErrors.Wrap(err, "failed to build update expression")
	}

	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.tableName),
		Key:                       s.key(userID),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err == nil {
		return nil
	}
	if isConditionFailed(err) {
		s.logger.Debug("conditional write rejected",
			zap.String("user_id", userID),
			zap.String("path", path.String()),
			zap.Int64("expected_version", expectedVersion))
		return repository.NewVersionConflict(userID, expectedVersion)
	}
	if isMissingPath(err) {
		return err
	}
	return appErrors.Wrap(err, "failed to update user record")
}

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "ConditionalCheckFailedException"
}

// isMissingPath reports whether err is the ValidationException DynamoDB
// raises when an update expression names a path that does not exist.
// Oversized items and malformed values raise the same code with a different
// message.
func isMissingPath(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) || apiErr.ErrorCode() != "ValidationException" {
		return false
	}
	return strings.Contains(strings.ToLower(apiErr.ErrorMessage()), "document path")
}

// toList turns a single record or a slice of records into a list value with
// no nil nested lists, since a NULL attribute cannot be list_append'ed to.
func toList(v any) (any, error) {
	switch t := v.(type) {
	case domain.AppRecord:
		normalizeApp(&t)
		return []domain.AppRecord{t}, nil
	case []domain.AppRecord:
		out := make([]domain.AppRecord, len(t))
		for i := range t {
			out[i] = t[i].Clone()
			normalizeApp(&out[i])
		}
		return out, nil
	case domain.ReviewRecord:
		normalizeReview(&t)
		return []domain.ReviewRecord{t}, nil
	case []domain.ReviewRecord:
		out := make([]domain.ReviewRecord, len(t))
		for i := range t {
			out[i] = t[i].Clone()
			normalizeReview(&out[i])
		}
		return out, nil
	default:
		return nil, fmt.Errorf("ddb store: unsupported list item type %T", v)
	}
}

func checkItem(path repository.Path, item any) error {
	switch item.(type) {
	case domain.AppRecord:
		if path.IsApps() {
			return nil
		}
	case domain.ReviewRecord:
		if !path.IsApps() {
			return nil
		}
	}
	return fmt.Errorf("ddb store: %T cannot be stored at %s", item, path)
}

func normalizeItem(item any) any {
	switch t := item.(type) {
	case domain.AppRecord:
		t = t.Clone()
		normalizeApp(&t)
		return t
	case domain.ReviewRecord:
		t = t.Clone()
		normalizeReview(&t)
		return t
	}
	return item
}

func normalizeApp(a *domain.AppRecord) {
	if a.Reviews == nil {
		a.Reviews = []domain.ReviewRecord{}
	}
	for i := range a.Reviews {
		normalizeReview(&a.Reviews[i])
	}
}

func normalizeReview(r *domain.ReviewRecord) {
	if r.Features == nil {
		r.Features = []string{}
	}
	if r.Sentiments == nil {
		r.Sentiments = []domain.SentimentEntry{}
	}
}
