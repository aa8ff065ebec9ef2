package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/blockfront-stats/tracker/internal/domain/cloudstats"
	"github.com/blockfront-stats/tracker/internal/domain/player"
	"github.com/blockfront-stats/tracker/internal/domain/playerstats"
	"github.com/blockfront-stats/tracker/internal/platform/logging"
	"github.com/blockfront-stats/tracker/internal/platform/rawjson"
	"go.opentelemetry.io/otel/attribute"
)

const DefaultBulkBatchSize = 50

// CycleResult summarises one RunCycle call.
type CycleResult struct {
	CloudStatID   int64 `json:"cloud_stat_id"`
	TrackedIDs    int   `json:"tracked_ids"`
	Batches       int   `json:"batches"`
	FailedBatches int   `json:"failed_batches"`
	Records       int   `json:"records"`
	Stored        int   `json:"stored"`
	Skipped       int   `json:"skipped"`
	Failed        int   `json:"failed"`
}

type IngestionService struct {
	provider   StatsProvider
	playerRepo player.Repository
	statsRepo  playerstats.Repository
	cloudRepo  cloudstats.Repository
	batchSize  int
	logger     *logging.Logger
}

func NewIngestionService(
	provider StatsProvider,
	playerRepo player.Repository,
	statsRepo playerstats.Repository,
	cloudRepo cloudstats.Repository,
	batchSize int,
	logger *logging.Logger,
) *IngestionService {
	if batchSize <= 0 {
		batchSize = DefaultBulkBatchSize
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &IngestionService{
		provider:   provider,
		playerRepo: playerRepo,
		statsRepo:  statsRepo,
		cloudRepo:  cloudRepo,
		batchSize:  batchSize,
		logger:     logger.Named("ingestion"),
	}
}

// RunCycle stores one cloud snapshot and one stat snapshot per tracked player.
// Only the cloud fetch and the roster read abort the cycle; batch and record
// failures are logged and counted.
func (s *IngestionService) RunCycle(ctx context.Context) (CycleResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.RunCycle")
	defer span.End()

	var result CycleResult

	cloudID, err := s.ingestCloudStats(ctx)
	if err != nil {
		return result, err
	}
	result.CloudStatID = cloudID

	ids, err := s.playerRepo.ListExternalIDs(ctx)
	if err != nil {
		return result, fmt.Errorf("list tracked players: %w", err)
	}
	result.TrackedIDs = len(ids)
	if len(ids) == 0 {
		s.logger.InfoContext(ctx, "no players to fetch stats for")
		return result, nil
	}

	canonical := make([]string, 0, len(ids))
	for _, id := range ids {
		canonical = append(canonical, player.CanonicalExternalID(id))
	}

	records := make([]rawjson.Record, 0, len(canonical))
	for _, batch := range partition(canonical, s.batchSize) {
		result.Batches++
		payload, err := s.provider.FetchPlayersBulk(ctx, batch)
		if err != nil {
			result.FailedBatches++
			s.logger.WarnContext(ctx, "bulk player fetch failed, continuing with next batch",
				"batch", result.Batches,
				"batch_size", len(batch),
				"error", err,
			)
			continue
		}

		batchRecords, skipped := payload.Records()
		if payload.Kind() == rawjson.KindScalar || payload.Kind() == rawjson.KindMalformed {
			s.logger.WarnContext(ctx, "bulk player fetch returned no players", "batch", result.Batches, "kind", payload.Kind().String())
		}
		if skipped > 0 {
			s.logger.WarnContext(ctx, "skipping non-record bulk entries", "batch", result.Batches, "count", skipped)
		}
		result.Skipped += skipped
		records = append(records, batchRecords...)
	}

	result.Records = len(records)
	for _, record := range records {
		switch s.storeRecord(ctx, record) {
		case recordStored:
			result.Stored++
		case recordSkipped:
			result.Skipped++
		default:
			result.Failed++
		}
	}

	span.SetAttributes(
		attribute.Int("ingestion.tracked_ids", result.TrackedIDs),
		attribute.Int("ingestion.failed_batches", result.FailedBatches),
		attribute.Int("ingestion.stored", result.Stored),
	)
	s.logger.InfoContext(ctx, "ingestion cycle finished",
		"tracked_ids", result.TrackedIDs,
		"batches", result.Batches,
		"failed_batches", result.FailedBatches,
		"records", result.Records,
		"stored", result.Stored,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)
	return result, nil
}

func (s *IngestionService) ingestCloudStats(ctx context.Context) (int64, error) {
	payload, err := s.provider.FetchCloudData(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch cloud stats: %w", err)
	}
	id, err := s.cloudRepo.AppendCloudStat(ctx, cloudstats.Normalize(payload))
	if err != nil {
		return 0, fmt.Errorf("store cloud stats: %w", err)
	}
	s.logger.InfoContext(ctx, "stored cloud stats", "id", id)
	return id, nil
}

type recordOutcome int

const (
	recordStored recordOutcome = iota
	recordSkipped
	recordFailed
)

func (s *IngestionService) storeRecord(ctx context.Context, record rawjson.Record) recordOutcome {
	fields := playerstats.Normalize(rawjson.FromAny(record))

	externalID, _ := record.String("uuid")
	username, _ := record.String("username")
	externalID = strings.TrimSpace(externalID)
	username = strings.TrimSpace(username)

	if externalID != "" && username != "" {
		if err := s.playerRepo.UpdateName(ctx, externalID, username); err != nil {
			s.logger.WarnContext(ctx, "failed to update player name", "uuid", externalID, "username", username, "error", err)
		}
	}
	if username == "" {
		s.logger.InfoContext(ctx, "skipping player record without username", "uuid", externalID)
		return recordSkipped
	}

	playerID, found, err := s.playerRepo.FindIDByName(ctx, username)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to resolve player", "username", username, "error", err)
		return recordFailed
	}
	if !found {
		s.logger.InfoContext(ctx, "skipping player not found in database", "username", username, "uuid", externalID)
		return recordSkipped
	}

	if _, err := s.statsRepo.AppendStat(ctx, playerID, fields); err != nil {
		s.logger.WarnContext(ctx, "failed to store player stats", "username", username, "player_id", playerID, "error", err)
		return recordFailed
	}
	return recordStored
}

func partition(ids []string, size int) [][]string {
	if size <= 0 {
		size = DefaultBulkBatchSize
	}
	out := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		out = append(out, ids[start:end])
	}
	return out
}
