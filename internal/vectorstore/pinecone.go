package vectorstore

import (
	"context"
	"fmt"

	"github.com/pinecone-io/go-pinecone/pinecone"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"
	lcpinecone "github.com/tmc/langchaingo/vectorstores/pinecone"
	"google.golang.org/protobuf/types/known/structpb"

	"medicalbot/internal/config"
	"medicalbot/internal/embedding"
	"medicalbot/internal/helper"
)

// textKey is the metadata field langchaingo's pinecone store reads chunk text from.
const textKey = "text"

// pineconeStore searches through langchaingo and upserts directly so chunks
// keep their deterministic ids. The remote index is provisioned elsewhere.
type pineconeStore struct {
	search    vectorstores.VectorStore
	client    *pinecone.Client
	embedder  embeddings.Embedder
	host      string
	namespace string
	dimension int
	batchSize int
}

func newPineconeStore(vs config.VectorStoreConfig, embedder embeddings.Embedder, batchSize int) (*pineconeStore, error) {
	search, err := lcpinecone.New(
		lcpinecone.WithHost(vs.Pinecone.Host),
		lcpinecone.WithAPIKey(vs.Pinecone.APIKey),
		lcpinecone.WithEmbedder(embedder),
		lcpinecone.WithNameSpace(vs.Pinecone.Namespace),
		lcpinecone.WithTextKey(textKey),
	)
	if err != nil {
		return nil, fmt.Errorf("connect pinecone: %w", err)
	}
	client, err := pinecone.NewClient(pinecone.NewClientParams{ApiKey: vs.Pinecone.APIKey})
	if err != nil {
		return nil, fmt.Errorf("connect pinecone: %w", err)
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &pineconeStore{
		search:    search,
		client:    client,
		embedder:  embedder,
		host:      vs.Pinecone.Host,
		namespace: vs.Pinecone.Namespace,
		dimension: vs.Dimension,
		batchSize: batchSize,
	}, nil
}

func (p *pineconeStore) SimilaritySearch(ctx context.Context, query string, numDocuments int, options ...vectorstores.Option) ([]schema.Document, error) {
	return p.search.SimilaritySearch(ctx, query, numDocuments, options...)
}

// AddDocuments embeds docs and upserts them under their chunk ids, so
// re-ingesting a file overwrites its vectors.
func (p *pineconeStore) AddDocuments(ctx context.Context, docs []schema.Document, _ ...vectorstores.Option) ([]string, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.PageContent
	}
	vectors, err := embedding.EmbedBatches(ctx, p.embedder, texts, p.batchSize)
	if err != nil {
		return nil, err
	}
	records, ids, err := pineconeVectors(docs, vectors, p.dimension)
	if err != nil {
		return nil, err
	}

	conn, err := p.client.IndexWithNamespace(p.host, p.namespace)
	if err != nil {
		return nil, fmt.Errorf("open pinecone index: %w", err)
	}
	defer conn.Close()

	for start := 0; start < len(records); start += p.batchSize {
		end := min(start+p.batchSize, len(records))
		if _, err := conn.UpsertVectors(&ctx, records[start:end]); err != nil {
			return nil, fmt.Errorf("upsert vectors %d-%d: %w", start, end, err)
		}
		log.Debug().Int("done", end).Int("total", len(records)).Msg("Upserted pinecone batch")
	}
	return ids, nil
}

// Reset deletes every vector in the configured namespace.
func (p *pineconeStore) Reset(ctx context.Context) error {
	conn, err := p.client.IndexWithNamespace(p.host, p.namespace)
	if err != nil {
		return fmt.Errorf("open pinecone index: %w", err)
	}
	defer conn.Close()
	if err := conn.DeleteAllVectorsInNamespace(&ctx); err != nil {
		return fmt.Errorf("clear namespace: %w", err)
	}
	return nil
}

func (p *pineconeStore) Close() error { return nil }

// pineconeVectors pairs docs with their embeddings. Ids come from the chunk
// metadata and the chunk text is stored under textKey for search.
func pineconeVectors(docs []schema.Document, vectors [][]float32, dimension int) ([]*pinecone.Vector, []string, error) {
	if len(vectors) != len(docs) {
		return nil, nil, fmt.Errorf("got %d vectors for %d documents", len(vectors), len(docs))
	}
	records := make([]*pinecone.Vector, len(docs))
	ids := make([]string, len(docs))
	for i, d := range docs {
		if dimension > 0 && len(vectors[i]) != dimension {
			return nil, nil, fmt.Errorf("embedding dimension mismatch: got %d, index expects %d", len(vectors[i]), dimension)
		}
		meta := make(map[string]any, len(d.Metadata)+1)
		for k, v := range d.Metadata {
			meta[k] = v
		}
		meta[textKey] = d.PageContent
		md, err := structpb.NewStruct(meta)
		if err != nil {
			return nil, nil, fmt.Errorf("encode metadata: %w", err)
		}
		ids[i] = helper.DocumentID(d.Metadata)
		records[i] = &pinecone.Vector{Id: ids[i], Values: vectors[i], Metadata: md}
	}
	return records, ids, nil
}
