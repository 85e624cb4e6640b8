package enum

// NoticeKind identifies one of the fixed user-facing cart messages.
type NoticeKind string

const (
	NoticeKindAddFailed         NoticeKind = "add_failed"         // lookup or persist failed while adding
	NoticeKindRemoveFailed      NoticeKind = "remove_failed"      // product not in cart, or persist failed
	NoticeKindUpdateFailed      NoticeKind = "update_failed"      // lookup or persist failed while changing amount
	NoticeKindInsufficientStock NoticeKind = "insufficient_stock" // requested amount exceeds stock
)
