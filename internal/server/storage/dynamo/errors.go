package dynamo

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/dmitrijs2005/authcore/internal/common"
)

// IsConditionalCheckFailed reports whether err is a failed conditional write.
// Callers decide what the failed precondition means (id collision, token
// already revoked, record absent).
func IsConditionalCheckFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

// WrapErr classifies a store call failure as the transient store error,
// keeping the cause in the chain. Timeouts and cancellations land here too:
// the core does not retry, the caller decides.
func WrapErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, common.ErrStoreUnavailable, err)
}
