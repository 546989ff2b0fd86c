// Command logcat dumps the content of a badger-backed event log for
// offline inspection. Partitions are scanned read-only, so it is safe to
// point at the data directory of a stopped relay.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/olekukonko/tablewriter"

	"chat-relay/eventlog"
)

func main() {
	dbPath := flag.String("db", "/tmp/chat-relay/badger", "Path to the event log directory")
	partition := flag.String("partition", eventlog.PartitionSend, "Partition to scan")
	flag.Parse()

	db, err := badger.Open(badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true))
	if err != nil {
		log.Fatal("Error while opening the event log: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Kind", "Detail"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	prefix := []byte(fmt.Sprintf("log:%s:", *partition))
	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			err := item.Value(func(v []byte) error {
				evt, err := eventlog.Decode(v)
				if err != nil {
					fmt.Printf("Error decoding key %s: %v\n", string(item.Key()), err)
					return nil
				}
				kind, detail := describe(evt)
				table.Append([]string{string(item.Key()), kind, detail})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}

	table.Render()
}

func describe(evt eventlog.Event) (string, string) {
	switch e := evt.(type) {
	case eventlog.Send:
		return "SEND", truncate(e.Message.Content, 60)
	case eventlog.Update:
		return "UPDATE", fmt.Sprintf("%s: %s", shortID(e.Message.ID.String()), truncate(e.Message.Content, 50))
	case eventlog.Delete:
		return "DELETE", idList(e.IDs)
	case eventlog.MarkAsSeen:
		return "SEEN", idList(e.IDs)
	}
	return "UNKNOWN", ""
}

func idList[T fmt.Stringer](ids []T) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, shortID(id.String()))
	}
	return strings.Join(parts, " ")
}

// shortID keeps the first 8 characters for readability.
func shortID(s string) string {
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
