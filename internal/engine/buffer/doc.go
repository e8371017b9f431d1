// Package buffer implements the host text surface the synchronization core
// runs against: UTF-8 text storage with a newline index, tracked spans whose
// offsets are rebased after every edit, per-span edit notifications, and an
// undo journal with boundary grouping.
//
// The edit protocol is single-threaded and notification-driven. Listener
// callbacks are invoked without the buffer lock held, so a listener may read
// the buffer or apply further edits from inside a callback.
//
// Notification contract: for an edit touching k watched spans, the buffer
// fires k BeforeEdit calls in span order, mutates the text and rebases every
// tracked span, then fires k AfterEdit calls in the same order. In AfterEdit,
// [start, end) is the span of the new text and deletedLen is the length of
// the text it replaced. An insertion at a position shared by two conjoined
// spans, or at a zero-width span, therefore produces exactly one
// BeforeEdit/AfterEdit pair per touched span.
package buffer
