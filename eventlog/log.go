package eventlog

// Cursor marks a position inside one partition. The zero value means
// "before the first entry". Cursors are only comparable within the
// backend that produced them.
type Cursor string

// A consumer group advances its own cursor; independent groups re-read
// the same partition without interfering with each other.
//
// Contract, shared by every backend:
//   - Append adds exactly one entry holding the serialized event under
//     the fixed EntryField key.
//   - Read returns every entry strictly after the cursor, oldest first,
//     together with the cursor of the last entry returned. A decode
//     failure on any single entry fails the whole read. Nothing past the
//     cursor is an empty result, not an error.
//   - CommitCursor/LoadCursor persist the consumption position per
//     (partition, group).
//
// The interface itself lives in the contract package; backends here
// implement it without importing it.
