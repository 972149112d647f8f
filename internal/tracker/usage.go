package tracker

// usageLog keeps the ordered usage history per fingerprint. Registration
// counts as the first usage, so a registered entry always has at least one
// record. Not safe for concurrent use; the engine serializes access.
type usageLog struct {
	records map[string][]UsageRecord
	total   int
}

func newUsageLog() *usageLog {
	return &usageLog{records: make(map[string][]UsageRecord)}
}

func (u *usageLog) track(fingerprint string, timestamp int64, metadata map[string]any) {
	u.records[fingerprint] = append(u.records[fingerprint], UsageRecord{
		Timestamp: timestamp,
		Metadata:  metadata,
	})
	u.total++
}

func (u *usageLog) count(fingerprint string) int {
	return len(u.records[fingerprint])
}

func (u *usageLog) lastUsed(fingerprint string) int64 {
	records := u.records[fingerprint]
	if len(records) == 0 {
		return 0
	}
	return records[len(records)-1].Timestamp
}

func (u *usageLog) clear() {
	u.records = make(map[string][]UsageRecord)
	u.total = 0
}
