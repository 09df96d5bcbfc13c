package catalog

import "strconv"

const TopicCatalogEvents = "catalog.events"

// Partition key = aggregate id, so events of one order or category stay ordered.
func PartitionKey(id int64) []byte { return []byte(strconv.FormatInt(id, 10)) }

func PartitionKeyString(id int64) string { return strconv.FormatInt(id, 10) }
