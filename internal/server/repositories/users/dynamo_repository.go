package users

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/dmitrijs2005/authcore/internal/common"
	"github.com/dmitrijs2005/authcore/internal/server/models"
	"github.com/dmitrijs2005/authcore/internal/server/storage/dynamo"
)

type DynamoRepository struct {
	db    dynamo.API
	table string
}

func NewDynamoRepository(db dynamo.API, table string) *DynamoRepository {
	return &DynamoRepository{db: db, table: table}
}

func (r *DynamoRepository) Create(ctx context.Context, user *models.User) error {
	item, err := attributevalue.MarshalMap(user)
	if err != nil {
		return fmt.Errorf("marshaling user: %w", err)
	}

	_, err = r.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(user_id)"),
	})
	if err != nil {
		if dynamo.IsConditionalCheckFailed(err) {
			// Should not happen with uuid generation; fatal, not retried.
			return common.ErrIDCollision
		}
		return dynamo.WrapErr("put user", err)
	}
	return nil
}

func (r *DynamoRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	out, err := r.db.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"user_id": &types.AttributeValueMemberS{Value: userID},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, dynamo.WrapErr("get user", err)
	}
	if out.Item == nil {
		return nil, common.ErrUserNotFound
	}

	user := &models.User{}
	if err := attributevalue.UnmarshalMap(out.Item, user); err != nil {
		return nil, fmt.Errorf("unmarshaling user: %w", err)
	}
	return user, nil
}

func (r *DynamoRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	out, err := r.db.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.table),
		IndexName:              aws.String(dynamo.UsernameIndex),
		KeyConditionExpression: aws.String("username = :username"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":username": &types.AttributeValueMemberS{Value: username},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, dynamo.WrapErr("query user by username", err)
	}
	if len(out.Items) == 0 {
		return nil, common.ErrUserNotFound
	}

	user := &models.User{}
	if err := attributevalue.UnmarshalMap(out.Items[0], user); err != nil {
		return nil, fmt.Errorf("unmarshaling user: %w", err)
	}
	return user, nil
}

func (r *DynamoRepository) UpdateLastLogin(ctx context.Context, userID string, at time.Time) error {
	return r.update(ctx, userID, "SET last_login_at = :v", map[string]types.AttributeValue{
		":v": &types.AttributeValueMemberS{Value: at.Format(time.RFC3339Nano)},
	})
}

func (r *DynamoRepository) UpdateUsername(ctx context.Context, userID, username string, at time.Time) error {
	return r.update(ctx, userID, "SET username = :u, username_changed_at = :t", map[string]types.AttributeValue{
		":u": &types.AttributeValueMemberS{Value: username},
		":t": &types.AttributeValueMemberS{Value: at.Format(time.RFC3339Nano)},
	})
}

func (r *DynamoRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	return r.update(ctx, userID, "SET password_hash = :h", map[string]types.AttributeValue{
		":h": &types.AttributeValueMemberS{Value: passwordHash},
	})
}

// update applies an update expression guarded on the user existing, so an
// update can never materialize a phantom item.
func (r *DynamoRepository) update(ctx context.Context, userID, expr string, values map[string]types.AttributeValue) error {
	_, err := r.db.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"user_id": &types.AttributeValueMemberS{Value: userID},
		},
		UpdateExpression:          aws.String(expr),
		ConditionExpression:       aws.String("attribute_exists(user_id)"),
		ExpressionAttributeValues: values,
	})
	if err != nil {
		if dynamo.IsConditionalCheckFailed(err) {
			return common.ErrUserNotFound
		}
		return dynamo.WrapErr("update user", err)
	}
	return nil
}
