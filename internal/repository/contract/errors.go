package contract

import "errors"

// ErrConversationExists wraps the store's uniqueness-constraint violation on
// the conversation members key. Callers recover by re-fetching the winner
// instead of surfacing the conflict.
var ErrConversationExists = errors.New("conversation already exists for participant set")
