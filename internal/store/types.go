package store

// #region user-state-row
// UserStateRow is the persisted shape of a UserState. Domain packages
// (userstate) convert to/from their own richer types; store stays
// domain-agnostic so it has no import-cycle on userstate.
type UserStateRow struct {
	UserID            string
	Attention         float64
	Fatigue           float64
	Mem               float64
	Speed             float64
	Stability         float64
	Motivation        float64
	Confidence        float64
	TSMs              int64
	LastSessionEndMs  int64
}

// #endregion user-state-row

// #region decision-record
// DecisionRecord is the append-only audit row for one process_event call.
type DecisionRecord struct {
	DecisionID        string
	UserID            string
	SessionID         string
	WordID            string
	ActionIndex       int
	StrategyJSON      string
	ExplanationJSON   string
	StateSnapshotJSON string
	TSMs              int64
}

// #endregion decision-record

// #region feature-vector-record
// FeatureVectorRecord is retained until its matching reward is applied or
// expires. Exactly one live record exists per DecisionID.
type FeatureVectorRecord struct {
	DecisionID     string
	UserID         string
	SessionID      string
	VectorJSON     string
	FeatureVersion int
	TSMs           int64
}

// #endregion feature-vector-record

// #region reward-queue-entry
type RewardStatus string

const (
	StatusPending    RewardStatus = "PENDING"
	StatusProcessing RewardStatus = "PROCESSING"
	StatusDone       RewardStatus = "DONE"
	StatusFailed     RewardStatus = "FAILED"
	StatusExpired    RewardStatus = "EXPIRED"
)

// RewardQueueEntry is a delayed-reward job. IdempotencyKey is unique;
// Applied guards double-application of the bandit update even if the
// entry is re-claimed after a crash mid-update.
type RewardQueueEntry struct {
	ID             string
	UserID         string
	DecisionID     string
	DueTSMs        int64
	Reward         *float64
	Status         RewardStatus
	Attempt        int
	IdempotencyKey string
	LastError      string
	Applied        bool
}

// #endregion reward-queue-entry
