package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"kgraph/domain/core/aggregates"
	"kgraph/infrastructure/persistence/snapshot"
	"kgraph/pkg/errors"
	"kgraph/pkg/observability"
)

// Single-table key shape: one item per corpus.
const (
	pkPrefix   = "CORPUS#"
	skSnapshot = "SNAPSHOT"
)

// GraphStore persists graph snapshots in DynamoDB, one item per
// corpus id. It is the deployment alternative to the file store and
// satisfies the same contract.
type GraphStore struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
	metrics   *observability.Metrics
}

// NewGraphStore creates a DynamoDB-backed graph store
func NewGraphStore(client *dynamodb.Client, tableName string, logger *zap.Logger, metrics *observability.Metrics) *GraphStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GraphStore{
		client:    client,
		tableName: tableName,
		logger:    logger,
		metrics:   metrics,
	}
}

// graphItem wraps a snapshot with the table's key attributes
type graphItem struct {
	PK string `dynamodbav:"PK"`
	SK string `dynamodbav:"SK"`

	CorpusID string                 `dynamodbav:"CorpusID"`
	Snapshot snapshot.GraphSnapshot `dynamodbav:"Snapshot"`
}

// Save writes the graph's snapshot, replacing any previous item for
// the same corpus id.
func (s *GraphStore) Save(ctx context.Context, graph *aggregates.Graph) error {
	item := graphItem{
		PK:       pkPrefix + graph.CorpusID(),
		SK:       skSnapshot,
		CorpusID: graph.CorpusID(),
		Snapshot: *snapshot.FromGraph(graph),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		s.recordOp("save", false)
		return errors.NewPersistenceError("marshal snapshot item", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	})
	if err != nil {
		s.recordOp("save", false)
		return errors.NewPersistenceError("put snapshot item", err)
	}

	s.logger.Debug("snapshot saved to dynamodb",
		zap.String("corpus_id", graph.CorpusID()),
		zap.Int("nodes", graph.NodeCount()),
		zap.Int("edges", graph.EdgeCount()))
	s.recordOp("save", true)
	return nil
}

// Load reads and rebuilds the graph for a corpus id
func (s *GraphStore) Load(ctx context.Context, corpusID string) (*aggregates.Graph, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       s.keyFor(corpusID),
	})
	if err != nil {
		s.recordOp("load", false)
		return nil, errors.NewPersistenceError("get snapshot item", err)
	}
	if out.Item == nil {
		s.recordOp("load", false)
		return nil, errors.NewNotFoundError(fmt.Sprintf("graph for corpus %q", corpusID))
	}

	var item graphItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		s.recordOp("load", false)
		return nil, errors.NewPersistenceError("unmarshal snapshot item", err)
	}

	graph, err := item.Snapshot.ToGraph()
	if err != nil {
		s.recordOp("load", false)
		return nil, err
	}
	s.recordOp("load", true)
	return graph, nil
}

// Exists reports whether a snapshot is stored for the corpus id
func (s *GraphStore) Exists(ctx context.Context, corpusID string) (bool, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:            aws.String(s.tableName),
		Key:                  s.keyFor(corpusID),
		ProjectionExpression: aws.String("PK"),
	})
	if err != nil {
		return false, errors.NewPersistenceError("get snapshot item", err)
	}
	return out.Item != nil, nil
}

// Delete removes the snapshot for a corpus id. It reports whether an
// item was actually removed.
func (s *GraphStore) Delete(ctx context.Context, corpusID string) (bool, error) {
	out, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    aws.String(s.tableName),
		Key:          s.keyFor(corpusID),
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		s.recordOp("delete", false)
		return false, errors.NewPersistenceError("delete snapshot item", err)
	}
	s.recordOp("delete", true)
	return len(out.Attributes) > 0, nil
}

// ListKeys returns the corpus ids with a stored snapshot. Scan is
// acceptable here: one item per corpus keeps the table small.
func (s *GraphStore) ListKeys(ctx context.Context) ([]string, error) {
	var keys []string
	var startKey map[string]types.AttributeValue

	for {
		out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:            aws.String(s.tableName),
			ProjectionExpression: aws.String("CorpusID"),
			ExclusiveStartKey:    startKey,
		})
		if err != nil {
			return nil, errors.NewPersistenceError("scan snapshot items", err)
		}

		for _, raw := range out.Items {
			var item struct {
				CorpusID string `dynamodbav:"CorpusID"`
			}
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				continue
			}
			if item.CorpusID != "" {
				keys = append(keys, item.CorpusID)
			}
		}

		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	return keys, nil
}

func (s *GraphStore) keyFor(corpusID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pkPrefix + corpusID},
		"SK": &types.AttributeValueMemberS{Value: skSnapshot},
	}
}

func (s *GraphStore) recordOp(op string, success bool) {
	if s.metrics != nil {
		s.metrics.RecordStoreOp(op, success)
	}
}
