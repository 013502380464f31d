package refreshtokens

import (
	"context"
	"fmt"

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

func (r *DynamoRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	item, err := attributevalue.MarshalMap(token)
	if err != nil {
		return fmt.Errorf("marshaling refresh token: %w", err)
	}

	_, err = r.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(token_id)"),
	})
	if err != nil {
		if dynamo.IsConditionalCheckFailed(err) {
			return common.ErrIDCollision
		}
		return dynamo.WrapErr("put refresh token", err)
	}
	return nil
}

func (r *DynamoRepository) Get(ctx context.Context, tokenID string) (*models.RefreshToken, error) {
	out, err := r.db.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"token_id": &types.AttributeValueMemberS{Value: tokenID},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, dynamo.WrapErr("get refresh token", err)
	}
	if out.Item == nil {
		return nil, common.ErrTokenNotFound
	}

	token := &models.RefreshToken{}
	if err := attributevalue.UnmarshalMap(out.Item, token); err != nil {
		return nil, fmt.Errorf("unmarshaling refresh token: %w", err)
	}
	return token, nil
}

func (r *DynamoRepository) Consume(ctx context.Context, tokenID string) error {
	_, err := r.db.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"token_id": &types.AttributeValueMemberS{Value: tokenID},
		},
		UpdateExpression:    aws.String("SET is_revoked = :t"),
		ConditionExpression: aws.String("attribute_exists(token_id) AND is_revoked = :f"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t": &types.AttributeValueMemberBOOL{Value: true},
			":f": &types.AttributeValueMemberBOOL{Value: false},
		},
	})
	if err != nil {
		if dynamo.IsConditionalCheckFailed(err) {
			// Either already revoked or deleted by TTL in the meantime;
			// both mean the presented token is no longer spendable.
			return common.ErrTokenRevoked
		}
		return dynamo.WrapErr("consume refresh token", err)
	}
	return nil
}

func (r *DynamoRepository) Revoke(ctx context.Context, tokenID string) error {
	_, err := r.db.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"token_id": &types.AttributeValueMemberS{Value: tokenID},
		},
		UpdateExpression:    aws.String("SET is_revoked = :t"),
		ConditionExpression: aws.String("attribute_exists(token_id)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t": &types.AttributeValueMemberBOOL{Value: true},
		},
	})
	if err != nil {
		if dynamo.IsConditionalCheckFailed(err) {
			// Absent record: nothing to revoke. Keeps Revoke idempotent
			// and avoids materializing phantom items.
			return nil
		}
		return dynamo.WrapErr("revoke refresh token", err)
	}
	return nil
}

func (r *DynamoRepository) ListByUser(ctx context.Context, userID string) ([]*models.RefreshToken, error) {
	out, err := r.db.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.table),
		IndexName:              aws.String(dynamo.UserIDIndex),
		KeyConditionExpression: aws.String("user_id = :user_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":user_id": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		return nil, dynamo.WrapErr("query refresh tokens by user", err)
	}

	tokens := make([]*models.RefreshToken, 0, len(out.Items))
	for _, item := range out.Items {
		token := &models.RefreshToken{}
		if err := attributevalue.UnmarshalMap(item, token); err != nil {
			return nil, fmt.Errorf("unmarshaling refresh token: %w", err)
		}
		tokens = append(tokens, token)
	}
	return tokens, nil
}
