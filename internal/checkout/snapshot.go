package checkout

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/localmarket-hq/localmarket-backend/internal/cart"
	pkgerrors "github.com/localmarket-hq/localmarket-backend/pkg/errors"
)

// The snapshot rides in payment-session metadata to survive the hosted
// redirect. Provider metadata values are capped at 500 characters and
// 50 keys, so the JSON is chunked across cart_0..cart_N keys.
const (
	SnapshotVersion = 2

	metadataChunkSize = 450
	maxMetadataChunks = 40

	keySnapshotVersion = "cart_version"
	keyChunkCount      = "cart_chunks"
	keyChunkPrefix     = "cart_"

	// MetadataKeyBuyerID and MetadataKeyBuyerEmail identify the buyer on
	// the session, outside the snapshot payload.
	MetadataKeyBuyerID    = "buyer_id"
	MetadataKeyBuyerEmail = "buyer_email"

	// Legacy single-supplier fields, still written for materializers that
	// predate the versioned snapshot.
	legacyKeySupplierID   = "supplier_id"
	legacyKeySupplierName = "supplier_name"
	legacyKeyProductIDs   = "product_ids"
)

// Snapshot is the immutable cart capture embedded at session-creation time.
type Snapshot struct {
	Version int            `json:"v"`
	Items   []SnapshotItem `json:"items"`
}

// SnapshotItem is one cart line in compact wire form.
type SnapshotItem struct {
	ProductID     uuid.UUID       `json:"id"`
	SupplierID    *uuid.UUID      `json:"sid,omitempty"`
	Name          string          `json:"n"`
	ProducerLabel string          `json:"pl,omitempty"`
	UnitPrice     decimal.Decimal `json:"p"`
	Quantity      int             `json:"q"`
	ImageURL      string          `json:"img,omitempty"`
}

// NewSnapshot captures the normalized cart lines.
func NewSnapshot(items []cart.Item) Snapshot {
	snap := Snapshot{Version: SnapshotVersion, Items: make([]SnapshotItem, 0, len(items))}
	for _, item := range items {
		item.Normalize()
		snap.Items = append(snap.Items, SnapshotItem{
			ProductID:     item.ProductID,
			SupplierID:    item.SupplierID,
			Name:          item.Name,
			ProducerLabel: item.ProducerLabel,
			UnitPrice:     item.UnitPrice,
			Quantity:      item.Quantity,
			ImageURL:      item.ImageURL,
		})
	}
	return snap
}

// CartItems converts the snapshot back into cart lines.
func (s Snapshot) CartItems() []cart.Item {
	items := make([]cart.Item, 0, len(s.Items))
	for _, si := range s.Items {
		items = append(items, cart.Item{
			ProductID:     si.ProductID,
			SupplierID:    si.SupplierID,
			Name:          si.Name,
			ProducerLabel: si.ProducerLabel,
			UnitPrice:     si.UnitPrice,
			Quantity:      si.Quantity,
			ImageURL:      si.ImageURL,
		})
	}
	return items
}

// EncodeMetadata serializes the snapshot into chunked metadata entries,
// alongside the legacy single-supplier fields.
func EncodeMetadata(snap Snapshot) (map[string]string, error) {
	payload, err := json.Marshal(snap)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal cart snapshot")
	}

	encoded := string(payload)
	chunks := splitChunks(encoded, metadataChunkSize)
	if len(chunks) > maxMetadataChunks {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart too large for checkout session").
			WithDetails(map[string]any{"chunks": len(chunks), "max": maxMetadataChunks})
	}

	metadata := make(map[string]string, len(chunks)+5)
	metadata[keySnapshotVersion] = strconv.Itoa(snap.Version)
	metadata[keyChunkCount] = strconv.Itoa(len(chunks))
	for i, chunk := range chunks {
		metadata[keyChunkPrefix+strconv.Itoa(i)] = chunk
	}

	writeLegacyFields(metadata, snap)
	return metadata, nil
}

// ParseMetadata reconstructs a snapshot from session metadata. Callers
// fall back to ParseLegacyMetadata when this fails.
func ParseMetadata(metadata map[string]string) (*Snapshot, error) {
	if len(metadata) == 0 {
		return nil, fmt.Errorf("metadata is empty")
	}

	version, err := strconv.Atoi(metadata[keySnapshotVersion])
	if err != nil {
		return nil, fmt.Errorf("snapshot version missing or invalid")
	}
	if version != SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", version)
	}

	count, err := strconv.Atoi(metadata[keyChunkCount])
	if err != nil || count < 1 {
		return nil, fmt.Errorf("chunk count missing or invalid")
	}

	var sb strings.Builder
	for i := 0; i < count; i++ {
		chunk, ok := metadata[keyChunkPrefix+strconv.Itoa(i)]
		if !ok {
			return nil, fmt.Errorf("snapshot chunk %d missing", i)
		}
		sb.WriteString(chunk)
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(sb.String()), &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Version != version {
		return nil, fmt.Errorf("snapshot version mismatch")
	}
	if len(snap.Items) == 0 {
		return nil, fmt.Errorf("snapshot has no items")
	}
	return &snap, nil
}

// LegacySnapshot is the pre-versioning metadata shape: a single supplier
// and a bare product-id list, with prices resolved from the live catalog.
type LegacySnapshot struct {
	SupplierID   *uuid.UUID
	SupplierName string
	ProductIDs   []uuid.UUID
}

// ParseLegacyMetadata reads the single-supplier fallback fields.
func ParseLegacyMetadata(metadata map[string]string) (*LegacySnapshot, error) {
	raw, ok := metadata[legacyKeyProductIDs]
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("legacy product ids missing")
	}

	legacy := &LegacySnapshot{SupplierName: metadata[legacyKeySupplierName]}
	if sid := strings.TrimSpace(metadata[legacyKeySupplierID]); sid != "" {
		parsed, err := uuid.Parse(sid)
		if err != nil {
			return nil, fmt.Errorf("legacy supplier id: %w", err)
		}
		legacy.SupplierID = &parsed
	}

	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := uuid.Parse(part)
		if err != nil {
			return nil, fmt.Errorf("legacy product id %q: %w", part, err)
		}
		legacy.ProductIDs = append(legacy.ProductIDs, id)
	}
	if len(legacy.ProductIDs) == 0 {
		return nil, fmt.Errorf("legacy product ids empty")
	}
	return legacy, nil
}

func writeLegacyFields(metadata map[string]string, snap Snapshot) {
	if len(snap.Items) == 0 {
		return
	}
	first := snap.Items[0]
	if first.SupplierID != nil {
		metadata[legacyKeySupplierID] = first.SupplierID.String()
	}
	metadata[legacyKeySupplierName] = first.ProducerLabel

	ids := make([]string, 0, len(snap.Items))
	for _, item := range snap.Items {
		ids = append(ids, item.ProductID.String())
	}
	metadata[legacyKeyProductIDs] = strings.Join(ids, ",")
}

func splitChunks(s string, size int) []string {
	if s == "" {
		return []string{""}
	}
	chunks := make([]string, 0, len(s)/size+1)
	for len(s) > size {
		chunks = append(chunks, s[:size])
		s = s[size:]
	}
	chunks = append(chunks, s)
	return chunks
}
