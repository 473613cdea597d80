// Package collect walks the configured partitions and gathers node availability records.
package collect

import (
	"context"
	"time"

	"github.com/UVA-Computer-Vision-Lab/rivanna-resource/internal/resource"
	"github.com/UVA-Computer-Vision-Lab/rivanna-resource/internal/scheduler"
	"github.com/UVA-Computer-Vision-Lab/rivanna-resource/internal/utils"
	"github.com/sirupsen/logrus"
)

// Source is the cluster view the collector reads from.
// *scheduler.SlurmScheduler satisfies it.
type Source interface {
	ListNodes(ctx context.Context, partition string) ([]string, error)
	NodeDetail(ctx context.Context, node string) (*scheduler.NodeDetail, error)
}

// Collector scans partitions one after another and derives a record per node.
type Collector struct {
	Source     Source
	Partitions []string
	Options    resource.Options
}

// Run scans every partition in order. Partition and node query failures are
// reported and skipped; records are returned for everything that succeeded.
// A node listed under several partitions is recorded once, under the first.
func (c *Collector) Run(ctx context.Context) []resource.NodeRecord {
	var records []resource.NodeRecord
	seen := make(map[string]string)

	for _, partition := range c.Partitions {
		if ctx.Err() != nil {
			utils.PrintWarning("Scan interrupted: %v", ctx.Err())
			break
		}

		utils.PrintMessage("Checking partition: %s", utils.StyleName(partition))
		start := time.Now()
		nodes, err := c.Source.ListNodes(ctx, partition)
		if err != nil {
			utils.PrintError("Error fetching nodes: %v", err)
		}
		if len(nodes) == 0 {
			utils.PrintWarning("No nodes found for partition: %s", partition)
			continue
		}
		logrus.WithFields(logrus.Fields{
			"partition": partition,
			"nodes":     len(nodes),
			"elapsed":   time.Since(start),
		}).Debug("listed partition")

		for _, node := range nodes {
			if first, dup := seen[node]; dup {
				logrus.WithFields(logrus.Fields{
					"partition": partition,
					"node":      node,
					"first":     first,
				}).Debug("skipping node already recorded")
				continue
			}

			rec, ok := c.collectNode(ctx, partition, node)
			if !ok {
				continue
			}
			seen[node] = partition
			records = append(records, rec)
		}
	}

	return records
}

// Node derives the record of a single node without partition context.
func (c *Collector) Node(ctx context.Context, node string) (resource.NodeRecord, bool) {
	return c.collectNode(ctx, "", node)
}

func (c *Collector) collectNode(ctx context.Context, partition, node string) (resource.NodeRecord, bool) {
	start := time.Now()
	detail, err := c.Source.NodeDetail(ctx, node)
	if err != nil {
		utils.PrintError("Error fetching node %s info: %v", node, err)
		return resource.NodeRecord{}, false
	}

	rec := resource.Derive(node, detail, c.Options)
	rec.Partition = partition
	logrus.WithFields(logrus.Fields{
		"partition": partition,
		"node":      node,
		"gpus":      rec.GPUsAvailable,
		"elapsed":   time.Since(start),
	}).Debug("derived node record")
	return rec, true
}
