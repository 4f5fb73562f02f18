package db

import "time"

// Moderation states a submission can hold. Only approved and flagged
// submissions are eligible for duplicate scanning.
const (
	ModerationApproved = "approved"
	ModerationFlagged  = "flagged"
	ModerationRejected = "rejected"
	ModerationMerged   = "merged"
)

// Lifecycle states for queue entries.
const (
	FlagStatusFlagged  = "flagged"
	FlagStatusApproved = "approved"
	FlagStatusRejected = "rejected"

	PairStatusPending = "pending"
	PairStatusIgnored = "ignored"
	PairStatusMerged  = "merged"
)

// Workflow statuses managers move a submission through.
const (
	WorkflowOpen       = "Open"
	WorkflowInProgress = "In Progress"
	WorkflowResolved   = "Resolved"
	WorkflowClosed     = "Closed"
)

// Submission maps pulse.submissions. Rows are never physically deleted;
// absorbed duplicates are marked merged instead.
type Submission struct {
	SubmissionID     int64      `gorm:"column:submission_id;primaryKey;autoIncrement"`
	SubmissionUUID   string     `gorm:"column:submission_uuid;type:uuid;not null;default:gen_random_uuid();unique"`
	CreatedAt        time.Time  `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
	Department       string     `gorm:"column:department;type:text;not null"`
	Category         string     `gorm:"column:category;type:text;not null"`
	Subject          string     `gorm:"column:subject;type:text;not null"`
	Body             string     `gorm:"column:body;type:text;not null"`
	Language         string     `gorm:"column:language;type:text;not null;default:und"`
	Upvotes          int        `gorm:"column:upvotes;type:integer;not null;default:0"`
	ModerationState  string     `gorm:"column:moderation_state;type:pulse.moderation_state;not null;default:approved"`
	ModerationReason *string    `gorm:"column:moderation_reason;type:text"`
	ModeratedBy      *string    `gorm:"column:moderated_by;type:text"`
	ModeratedAt      *time.Time `gorm:"column:moderated_at;type:timestamptz"`
	WorkflowStatus   string     `gorm:"column:workflow_status;type:text;not null;default:Open"`
	ManagerResponse  *string    `gorm:"column:manager_response;type:text"`
	UpdatedAt        *time.Time `gorm:"column:updated_at;type:timestamptz"`
}

func (Submission) TableName() string { return "pulse.submissions" }

// ModerationFlag maps pulse.moderation_flags. One active flag per flagged
// submission; resolved exactly once by a reviewer.
type ModerationFlag struct {
	FlagID       int64      `gorm:"column:flag_id;primaryKey;autoIncrement"`
	FlagUUID     string     `gorm:"column:flag_uuid;type:uuid;not null;default:gen_random_uuid();unique"`
	SubmissionID int64      `gorm:"column:submission_id;type:bigint;not null"`
	Reason       string     `gorm:"column:reason;type:text;not null"`
	Status       string     `gorm:"column:status;type:pulse.flag_status;not null;default:flagged"`
	CreatedAt    time.Time  `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
	ReviewedBy   *string    `gorm:"column:reviewed_by;type:text"`
	ReviewedAt   *time.Time `gorm:"column:reviewed_at;type:timestamptz"`
}

func (ModerationFlag) TableName() string { return "pulse.moderation_flags" }

// DuplicatePair maps pulse.duplicate_pairs. The queue tolerates multiple
// pending rows for the same unordered submission combination; resolution is
// idempotent by status guard.
type DuplicatePair struct {
	PairID                int64      `gorm:"column:pair_id;primaryKey;autoIncrement"`
	PairUUID              string     `gorm:"column:pair_uuid;type:uuid;not null;default:gen_random_uuid();unique"`
	BaseSubmissionID      int64      `gorm:"column:base_submission_id;type:bigint;not null"`
	CandidateSubmissionID int64      `gorm:"column:candidate_submission_id;type:bigint;not null"`
	Category              string     `gorm:"column:category;type:text;not null"`
	Score                 float64    `gorm:"column:score;type:double precision;not null"`
	OverlapKeywords       string     `gorm:"column:overlap_keywords;type:text;not null;default:''"`
	Status                string     `gorm:"column:status;type:pulse.pair_status;not null;default:pending"`
	CreatedAt             time.Time  `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
	ReviewedBy            *string    `gorm:"column:reviewed_by;type:text"`
	ReviewedAt            *time.Time `gorm:"column:reviewed_at;type:timestamptz"`
}

func (DuplicatePair) TableName() string { return "pulse.duplicate_pairs" }

// MergeRecord maps pulse.merge_records. Append-only audit trail; rows are
// never updated or deleted.
type MergeRecord struct {
	MergeID             int64     `gorm:"column:merge_id;primaryKey;autoIncrement"`
	MergeUUID           string    `gorm:"column:merge_uuid;type:uuid;not null;default:gen_random_uuid();unique"`
	MasterSubmissionID  int64     `gorm:"column:master_submission_id;type:bigint;not null"`
	MergedSubmissionID  int64     `gorm:"column:merged_submission_id;type:bigint;not null"`
	Actor               string    `gorm:"column:actor;type:text;not null"`
	MergedAt            time.Time `gorm:"column:merged_at;type:timestamptz;not null;default:now()"`
	MasterUpvotesBefore int       `gorm:"column:master_upvotes_before;type:integer;not null"`
	MergedUpvotesBefore int       `gorm:"column:merged_upvotes_before;type:integer;not null"`
	CombinedUpvotes     int       `gorm:"column:combined_upvotes;type:integer;not null"`
	MasterCreatedAt     time.Time `gorm:"column:master_created_at;type:timestamptz;not null"`
	MergedCreatedAt     time.Time `gorm:"column:merged_created_at;type:timestamptz;not null"`
}

func (MergeRecord) TableName() string { return "pulse.merge_records" }

// Employee maps pulse.employees.
type Employee struct {
	EmployeeID   int64      `gorm:"column:employee_id;primaryKey;autoIncrement"`
	EmployeeUUID string     `gorm:"column:employee_uuid;type:uuid;not null;default:gen_random_uuid();unique"`
	Username     string     `gorm:"column:username;type:text;not null;unique"`
	PasswordHash string     `gorm:"column:password_hash;type:text;not null"`
	Role         string     `gorm:"column:role;type:text;not null;default:employee"`
	CreatedAt    time.Time  `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at;type:timestamptz"`
}

func (Employee) TableName() string { return "pulse.employees" }

// Session maps pulse.sessions.
type Session struct {
	SessionID  string    `gorm:"column:session_id;type:text;primaryKey"`
	EmployeeID int64     `gorm:"column:employee_id;type:bigint;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
	ExpiresAt  time.Time `gorm:"column:expires_at;type:timestamptz;not null"`
	LastSeenAt time.Time `gorm:"column:last_seen_at;type:timestamptz;not null;default:now()"`
}

func (Session) TableName() string { return "pulse.sessions" }

func autoMigrateModels() []any {
	return []any{
		&Submission{},
		&ModerationFlag{},
		&DuplicatePair{},
		&MergeRecord{},
		&Employee{},
		&Session{},
	}
}
