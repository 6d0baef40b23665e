// Package restructure rebuilds a JSON document from flat records under the
// direction of a schema tree.
//
// A layer of schema nodes is evaluated against a set of records. When the
// layer holds a Group node, the first one partitions the records by the
// string form of its path's value and each partition is evaluated against
// the group's children; the result is an object keyed by partition, in
// first-seen order. Without a Group node, each record becomes one object
// built from the layer's Field, Object and (nested) Group nodes.
//
// Only the first Group node of a layer partitions. Later Group siblings are
// ignored at that layer.
package restructure

import (
	"fmt"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/mcncl/jsonshaper/internal/errors"
	"github.com/mcncl/jsonshaper/internal/logging"
	"github.com/mcncl/jsonshaper/internal/models"
	"github.com/mcncl/jsonshaper/internal/schema"
)

// DefaultMaxDepth bounds the combined group and object nesting of a call.
const DefaultMaxDepth = 512

// Restructurer evaluates schema trees against flat records. It holds no
// per-call state and may be shared between goroutines.
type Restructurer struct {
	maxDepth int
	workers  int
	logger   *log.Logger
}

// Option configures a Restructurer.
type Option func(*Restructurer)

// WithMaxDepth sets the recursion bound. Non-positive values are ignored.
func WithMaxDepth(depth int) Option {
	return func(r *Restructurer) {
		if depth > 0 {
			r.maxDepth = depth
		}
	}
}

// WithWorkers evaluates the partitions of a Group with up to n goroutines.
// Zero keeps evaluation sequential. Output order does not depend on n.
func WithWorkers(n int) Option {
	return func(r *Restructurer) {
		if n >= 0 {
			r.workers = n
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) Option {
	return func(r *Restructurer) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRestructurer creates a Restructurer with the given options applied.
func NewRestructurer(opts ...Option) *Restructurer {
	r := &Restructurer{
		maxDepth: DefaultMaxDepth,
		logger:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Restructure rebuilds records with a default Restructurer.
func Restructure(records []models.FlatRecord, layer []*schema.Node) (models.JSONValue, error) {
	return NewRestructurer().Restructure(records, layer)
}

// Restructure evaluates layer against records.
//
// An empty layer returns records itself. Otherwise the result is an
// *models.Object when the layer groups and a models.Array of *models.Object
// when it does not. Paths missing from a record yield models.Absent.
//
// The schema tree is only read. A cycle in it, or nesting beyond the
// configured depth, is reported as a transform error.
func (r *Restructurer) Restructure(records []models.FlatRecord, layer []*schema.Node) (models.JSONValue, error) {
	if len(layer) == 0 {
		return records, nil
	}
	if err := schema.CheckAcyclic(layer); err != nil {
		return nil, errors.NewTransformError("cyclic schema tree", err)
	}
	r.reportDormantGroups(layer)

	return r.restructure(records, layer, 1)
}

func (r *Restructurer) restructure(records []models.FlatRecord, layer []*schema.Node, depth int) (models.JSONValue, error) {
	if len(layer) == 0 {
		return records, nil
	}
	if err := r.checkDepth(depth); err != nil {
		return nil, err
	}

	group := firstGroup(layer)
	if group == nil {
		out := make(models.Array, len(records))
		for i, record := range records {
			obj, err := r.build(record, layer, depth)
			if err != nil {
				return nil, err
			}
			out[i] = obj
		}
		return out, nil
	}

	keys, buckets := partition(records, group.Path)
	results := make([]models.JSONValue, len(keys))

	if r.workers > 0 && len(keys) > 1 {
		var g errgroup.Group
		g.SetLimit(r.workers)
		for i, key := range keys {
			i, key := i, key
			g.Go(func() error {
				v, err := r.restructure(buckets[key], group.Children, depth+1)
				if err != nil {
					return err
				}
				results[i] = v
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, key := range keys {
			v, err := r.restructure(buckets[key], group.Children, depth+1)
			if err != nil {
				return nil, err
			}
			results[i] = v
		}
	}

	out := &models.Object{}
	for i, key := range keys {
		out.Set(key, results[i])
	}
	return out, nil
}

// build makes the output object for one record. Group nodes nest like
// Object nodes here; a later node with the same key replaces an earlier one.
func (r *Restructurer) build(record models.FlatRecord, nodes []*schema.Node, depth int) (*models.Object, error) {
	if err := r.checkDepth(depth); err != nil {
		return nil, err
	}

	obj := &models.Object{}
	for _, node := range nodes {
		if node == nil {
			return nil, errors.NewTransformError("schema layer contains an empty node", errors.ErrInvalidSchema)
		}
		switch node.Mode {
		case schema.Field:
			value, ok := record.Get(node.Path)
			if !ok {
				value = models.Absent
			}
			obj.Set(node.Key, value)
		case schema.Object, schema.Group:
			child, err := r.build(record, node.Children, depth+1)
			if err != nil {
				return nil, err
			}
			obj.Set(node.Key, child)
		default:
			return nil, errors.NewTransformError(
				fmt.Sprintf("schema node %q has unknown mode %s", node.Key, node.Mode),
				errors.ErrInvalidSchema,
			)
		}
	}
	return obj, nil
}

func (r *Restructurer) checkDepth(depth int) error {
	if depth > r.maxDepth {
		return errors.NewTransformError(
			fmt.Sprintf("nesting depth %d exceeds limit of %d", depth, r.maxDepth),
			errors.ErrDepthExceeded,
		)
	}
	return nil
}

// reportDormantGroups logs Group siblings that will not partition. Only the
// chain of first groups is ever evaluated as a layer.
func (r *Restructurer) reportDormantGroups(layer []*schema.Node) {
	for level := 1; len(layer) > 0 && level <= r.maxDepth; level++ {
		var first *schema.Node
		for _, node := range layer {
			if node == nil || node.Mode != schema.Group {
				continue
			}
			if first == nil {
				first = node
				continue
			}
			r.logger.Debug("group node does not partition at this layer",
				"key", node.Key, "path", node.Path, "partitioned_by", first.Path, "level", level)
		}
		if first == nil {
			return
		}
		layer = first.Children
	}
}

func firstGroup(layer []*schema.Node) *schema.Node {
	for _, node := range layer {
		if node != nil && node.Mode == schema.Group {
			return node
		}
	}
	return nil
}

// partition buckets records by the string form of the value at path and
// returns the bucket keys in first-seen order.
func partition(records []models.FlatRecord, path string) ([]string, map[string][]models.FlatRecord) {
	var keys []string
	buckets := make(map[string][]models.FlatRecord)
	for _, record := range records {
		value, _ := record.Get(path)
		key := GroupKey(value)
		bucket, ok := buckets[key]
		if !ok {
			keys = append(keys, key)
		}
		buckets[key] = append(bucket, record)
	}
	return keys, buckets
}
