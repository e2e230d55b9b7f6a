package errcode

type ErrCode int64

const (
	SUCCESS            ErrCode = 0
	SESSION_EXPIRED    ErrCode = 41001
	SERVICE_CEILING    ErrCode = 41002
	ILLEGAL_DATAFORMAT ErrCode = 41003
	INVALID_METHOD     ErrCode = 42001
	INVALID_PARAMS     ErrCode = 42002
	UNKNOWN_OPERATION  ErrCode = 44001
	UNKNOWN_PROPOSAL   ErrCode = 44002
	INTERNAL_ERROR     ErrCode = 45001

	ErrUnauthorized        ErrCode = 46001
	ErrAlreadyVoted        ErrCode = 46002
	ErrAlreadyEnfranchised ErrCode = 46003
	ErrBribeeAlreadyVoted  ErrCode = 46004
	ErrSelfDelegation      ErrCode = 46005
	ErrDelegationLoop      ErrCode = 46006
	ErrNoRight             ErrCode = 46007
	ErrBribeeIneligible    ErrCode = 46008
	ErrZeroBribe           ErrCode = 46009
	ErrBribeTooHigh        ErrCode = 46010
	ErrNoPendingWithdrawal ErrCode = 46011
	ErrInsufficientBalance ErrCode = 46012
	ErrNoTargets           ErrCode = 46013
	ErrEscrowCaller        ErrCode = 46014
)

var ErrMessage = map[ErrCode]string{
	SUCCESS:                "SUCCESS",
	SESSION_EXPIRED:        "SESSION EXPIRED",
	SERVICE_CEILING:        "SERVICE CEILING",
	ILLEGAL_DATAFORMAT:     "ILLEGAL DATAFORMAT",
	INVALID_METHOD:         "INVALID METHOD",
	INVALID_PARAMS:         "INVALID PARAMS",
	UNKNOWN_OPERATION:      "UNKNOWN OPERATION",
	UNKNOWN_PROPOSAL:       "UNKNOWN PROPOSAL",
	INTERNAL_ERROR:         "INTERNAL ERROR",
	ErrUnauthorized:        "UNAUTHORIZED, only chairperson can give right to vote",
	ErrAlreadyVoted:        "ALREADY VOTED",
	ErrAlreadyEnfranchised: "ALREADY HAS RIGHT TO VOTE",
	ErrBribeeAlreadyVoted:  "BRIBEE ALREADY VOTED",
	ErrSelfDelegation:      "SELF DELEGATION",
	ErrDelegationLoop:      "DELEGATION LOOP",
	ErrNoRight:             "NO RIGHT TO VOTE",
	ErrBribeeIneligible:    "BRIBEE HAS NO RIGHT TO VOTE",
	ErrZeroBribe:           "ZERO BRIBE",
	ErrBribeTooHigh:        "BRIBE TOO HIGH",
	ErrNoPendingWithdrawal: "NO PENDING WITHDRAWAL",
	ErrInsufficientBalance: "INSUFFICIENT BALANCE",
	ErrNoTargets:           "NO TARGETS",
	ErrEscrowCaller:        "ESCROW CALLER",
}
