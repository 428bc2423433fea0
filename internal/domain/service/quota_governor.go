package service

// QuotaGovernor 1回の同期実行内でのリクエスト上限を管理する
//
// 商用プロバイダーのコストはリクエスト数に比例するため、上限の強制は最適化ではなく
// 正当性の要件として扱う。プロバイダーへリクエストを発行するコードパスは必ず
// 事前にTryConsume系を呼ぶこと。カウンターは実行ごとに使い捨てで、永続化しない
type QuotaGovernor struct {
	maxRequestsPerRun      int
	maxRequestsPerCategory int
	maxPagesPerCell        int

	totalRequests    int
	categoryRequests int
	cellPages        int
	capReached       bool
}

// NewQuotaGovernor 新しいQuotaGovernorを作成する（実行開始時に1つ作り、終了時に捨てる）
func NewQuotaGovernor(maxRequestsPerRun, maxRequestsPerCategory, maxPagesPerCell int) *QuotaGovernor {
	return &QuotaGovernor{
		maxRequestsPerRun:      maxRequestsPerRun,
		maxRequestsPerCategory: maxRequestsPerCategory,
		maxPagesPerCell:        maxPagesPerCell,
	}
}

// TryConsume は実行全体・カテゴリの上限を確認してリクエスト1回分を消費する
// いずれかの上限に達している場合はfalseを返し、呼び出し元は直ちに停止しなければならない
// 上限ちょうどに達する呼び出しまではtrueを返し、それ以降はfalseを返す
func (q *QuotaGovernor) TryConsume() bool {
	if q.totalRequests >= q.maxRequestsPerRun || q.categoryRequests >= q.maxRequestsPerCategory {
		q.capReached = true
		return false
	}
	q.totalRequests++
	q.categoryRequests++
	return true
}

// TryConsumePage はセル内のページ上限も含めて確認し、ページ取得1回分を消費する
func (q *QuotaGovernor) TryConsumePage() bool {
	if q.cellPages >= q.maxPagesPerCell {
		q.capReached = true
		return false
	}
	if !q.TryConsume() {
		return false
	}
	q.cellPages++
	return true
}

// RunExhausted は実行全体・カテゴリの上限に達しているかを消費なしで確認する
// 新しいセルの走査を始める価値があるかの事前判定に使う
func (q *QuotaGovernor) RunExhausted() bool {
	if q.totalRequests >= q.maxRequestsPerRun || q.categoryRequests >= q.maxRequestsPerCategory {
		q.capReached = true
		return true
	}
	return false
}

// ResetCell は新しいセルの走査開始時にページカウンターをリセットする
func (q *QuotaGovernor) ResetCell() {
	q.cellPages = 0
}

// CapReached はこの実行中にいずれかの上限に達したかどうかを返す
// サマリーに載せて運用者が上限の調整を判断できるようにする
func (q *QuotaGovernor) CapReached() bool {
	return q.capReached
}

// RequestsUsed はこの実行で消費したリクエスト総数を返す
func (q *QuotaGovernor) RequestsUsed() int {
	return q.totalRequests
}
