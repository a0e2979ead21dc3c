package worker

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"sales-notifier/config"
	"sales-notifier/internal/models"
	"sales-notifier/internal/service"
	"sales-notifier/internal/util"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// Mode is the ingestion discovery mechanism currently in charge.
type Mode int32

const (
	ModeSubscribing Mode = iota
	ModeLive
	ModePolling
)

func (m Mode) String() string {
	switch m {
	case ModeSubscribing:
		return "subscribing"
	case ModeLive:
		return "live"
	case ModePolling:
		return "polling"
	default:
		return "unknown"
	}
}

// RowSource is the slice of the store the ingest worker reads from.
type RowSource interface {
	GetLedgerSaleByID(ctx context.Context, id int64) (*models.LedgerSale, error)
	GetSaleByID(ctx context.Context, id int64) (*models.Sale, error)
	GetPaymentByID(ctx context.Context, id int64) (*models.Payment, error)
	ListLedgerSalesAfter(ctx context.Context, cursor int64, limit int) ([]models.LedgerSale, error)
	ListSalesAfter(ctx context.Context, cursor int64, limit int) ([]models.Sale, error)
	ListPaymentsAfter(ctx context.Context, cursor int64, limit int) ([]models.Payment, error)
	MaxLedgerSaleID(ctx context.Context) (int64, error)
	MaxSaleID(ctx context.Context) (int64, error)
	MaxPaymentID(ctx context.Context) (int64, error)
}

// RowHandler processes normalized rows from either discovery mechanism.
type RowHandler interface {
	HandleLedgerSale(ctx context.Context, entry models.LedgerSale) error
	HandleSale(ctx context.Context, sale models.Sale) error
	HandlePayment(ctx context.Context, payment models.Payment) error
}

// insertPayload is the pg_notify payload written by the insert trigger.
type insertPayload struct {
	Table string `json:"table"`
	ID    int64  `json:"id"`
}

// IngestWorker discovers new rows either through a LISTEN/NOTIFY
// subscription or, after the subscription degrades, through a polling
// loop. The two mechanisms never run the same row twice: live rows
// advance the cursors, and the polling fetch only reads above them.
// Once polling starts it stays authoritative; later push notifications
// are discarded.
type IngestWorker struct {
	cfg      config.IngestConfig
	conninfo string
	source   RowSource
	handler  RowHandler
	cursors  *service.CursorStore
	logger   *zap.Logger

	listener *pq.Listener
	mode     atomic.Int32

	mu             sync.Mutex
	pollingStarted bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewIngestWorker creates the ingest worker. conninfo is the Postgres
// connection string used for the LISTEN session.
func NewIngestWorker(
	cfg config.IngestConfig,
	conninfo string,
	source RowSource,
	handler RowHandler,
	cursors *service.CursorStore,
) *IngestWorker {
	w := &IngestWorker{
		cfg:      cfg,
		conninfo: conninfo,
		source:   source,
		handler:  handler,
		cursors:  cursors,
		logger:   util.GetLogger(),
	}
	w.setMode(ModeSubscribing)
	return w
}

// Mode returns the current ingestion mode.
func (w *IngestWorker) Mode() Mode {
	return Mode(w.mode.Load())
}

func (w *IngestWorker) setMode(m Mode) {
	w.mode.Store(int32(m))
	util.IngestMode.Set(float64(m))
}

// Status reports the current mode and cursor positions.
func (w *IngestWorker) Status() (Mode, models.CursorState) {
	return w.Mode(), w.cursors.State()
}

// Start opens the LISTEN subscription and begins routing events. A
// subscription that cannot be established triggers the polling
// fallback instead of failing startup.
func (w *IngestWorker) Start(ctx context.Context) error {
	w.ctx, w.cancel = context.WithCancel(ctx)

	w.listener = pq.NewListener(w.conninfo, w.cfg.ReconnectInterval, time.Minute, w.onListenerEvent)
	if err := w.listener.Listen(w.cfg.Channel); err != nil {
		w.logger.Warn("Failed to establish LISTEN subscription",
			zap.String("channel", w.cfg.Channel),
			zap.Error(err))
		w.startPollingFallback()
	}

	w.wg.Add(1)
	go w.run()

	w.logger.Info("Ingest worker started",
		zap.String("channel", w.cfg.Channel),
		zap.Duration("poll_interval", w.cfg.PollInterval))
	return nil
}

// Stop shuts the worker down and waits for in-flight work.
func (w *IngestWorker) Stop() error {
	if w.cancel != nil {
		w.cancel()
	}
	var err error
	if w.listener != nil {
		err = w.listener.Close()
	}
	w.wg.Wait()
	w.logger.Info("Ingest worker stopped")
	return err
}

func (w *IngestWorker) run() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return

		case n, ok := <-w.listener.Notify:
			if !ok {
				return
			}
			// pq delivers a nil notification after a reconnect; the
			// event callback already handled the state change.
			if n == nil {
				continue
			}
			if w.Mode() == ModePolling {
				continue
			}
			w.handleNotification(w.ctx, n.Extra)
		}
	}
}

// onListenerEvent tracks subscription health. Any terminal condition
// hands control to the polling loop; the listener keeps retrying its
// connection on its own interval, but a recovered subscription does
// not take routing back from polling.
func (w *IngestWorker) onListenerEvent(event pq.ListenerEventType, err error) {
	switch event {
	case pq.ListenerEventConnected, pq.ListenerEventReconnected:
		if w.Mode() == ModeSubscribing {
			w.setMode(ModeLive)
			w.logger.Info("Live subscription established")
		}

	case pq.ListenerEventDisconnected, pq.ListenerEventConnectionAttemptFailed:
		w.logger.Warn("Subscription degraded", zap.Error(err))
		go w.startPollingFallback()
	}
}

// startPollingFallback activates polling exactly once. Repeat failure
// callbacks after that are no-ops.
func (w *IngestWorker) startPollingFallback() {
	w.mu.Lock()
	if w.pollingStarted {
		w.mu.Unlock()
		return
	}
	w.pollingStarted = true
	w.mu.Unlock()

	w.setMode(ModePolling)
	w.logger.Warn("Switching to polling fallback",
		zap.Duration("interval", w.cfg.PollInterval))

	w.seedBaseline(w.ctx)

	w.wg.Add(1)
	go w.pollLoop()
}

// seedBaseline sets every never-advanced cursor to the table's current
// maximum ID, so a first-ever fallback does not replay full history.
// Cursors already advanced by live events are left alone.
func (w *IngestWorker) seedBaseline(ctx context.Context) {
	state := w.cursors.State()
	maxes := state

	if state.LedgerSaleID == 0 {
		if id, err := w.source.MaxLedgerSaleID(ctx); err != nil {
			w.logger.Error("Failed to read max ledger sale id", zap.Error(err))
		} else {
			maxes.LedgerSaleID = id
		}
	}
	if state.SaleID == 0 {
		if id, err := w.source.MaxSaleID(ctx); err != nil {
			w.logger.Error("Failed to read max sale id", zap.Error(err))
		} else {
			maxes.SaleID = id
		}
	}
	if state.PaymentID == 0 {
		if id, err := w.source.MaxPaymentID(ctx); err != nil {
			w.logger.Error("Failed to read max payment id", zap.Error(err))
		} else {
			maxes.PaymentID = id
		}
	}

	seeded := w.cursors.SeedBaseline(ctx, maxes)
	w.logger.Info("Polling baseline established",
		zap.Int64("ledger_sale_id", seeded.LedgerSaleID),
		zap.Int64("sale_id", seeded.SaleID),
		zap.Int64("payment_id", seeded.PaymentID))
}

func (w *IngestWorker) pollLoop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.pollOnce(w.ctx)
		}
	}
}

// pollOnce runs one polling cycle over the three tables in order. A
// failed fetch on one table does not block the other two.
func (w *IngestWorker) pollOnce(ctx context.Context) {
	util.PollCyclesTotal.Inc()
	w.pollLedgerSales(ctx)
	w.pollSales(ctx)
	w.pollPayments(ctx)
}

func (w *IngestWorker) pollLedgerSales(ctx context.Context) {
	cursor := w.cursors.State().LedgerSaleID
	entries, err := w.source.ListLedgerSalesAfter(ctx, cursor, w.cfg.PollBatchSize)
	if err != nil {
		util.PollFetchFailures.WithLabelValues("ledger_sales").Inc()
		w.logger.Error("Failed to poll ledger sales", zap.Error(err))
		return
	}

	for _, entry := range entries {
		// Stop at the first failed row so the cursor stays behind it
		// and the next cycle retries from there.
		if err := w.handler.HandleLedgerSale(ctx, entry); err != nil {
			return
		}
	}
}

func (w *IngestWorker) pollSales(ctx context.Context) {
	cursor := w.cursors.State().SaleID
	sales, err := w.source.ListSalesAfter(ctx, cursor, w.cfg.PollBatchSize)
	if err != nil {
		util.PollFetchFailures.WithLabelValues("sales").Inc()
		w.logger.Error("Failed to poll sales", zap.Error(err))
		return
	}

	for _, sale := range sales {
		if err := w.handler.HandleSale(ctx, sale); err != nil {
			return
		}
	}
}

func (w *IngestWorker) pollPayments(ctx context.Context) {
	cursor := w.cursors.State().PaymentID
	payments, err := w.source.ListPaymentsAfter(ctx, cursor, w.cfg.PollBatchSize)
	if err != nil {
		util.PollFetchFailures.WithLabelValues("payments").Inc()
		w.logger.Error("Failed to poll payments", zap.Error(err))
		return
	}

	for _, payment := range payments {
		if err := w.handler.HandlePayment(ctx, payment); err != nil {
			return
		}
	}
}

// handleNotification routes one live insert notification. The payload
// only carries the table and row ID; the row itself is fetched fresh.
func (w *IngestWorker) handleNotification(ctx context.Context, payload string) {
	var insert insertPayload
	if err := json.Unmarshal([]byte(payload), &insert); err != nil {
		w.logger.Error("Failed to decode notification payload",
			zap.String("payload", payload),
			zap.Error(err))
		return
	}
	if insert.ID == 0 {
		return
	}

	switch insert.Table {
	case w.cfg.LedgerSalesTable:
		entry, err := w.source.GetLedgerSaleByID(ctx, insert.ID)
		if err != nil {
			w.logger.Error("Failed to fetch notified ledger sale",
				zap.Int64("id", insert.ID), zap.Error(err))
			return
		}
		if entry == nil {
			return
		}
		_ = w.handler.HandleLedgerSale(ctx, *entry)

	case w.cfg.SalesTable:
		sale, err := w.source.GetSaleByID(ctx, insert.ID)
		if err != nil {
			w.logger.Error("Failed to fetch notified sale",
				zap.Int64("id", insert.ID), zap.Error(err))
			return
		}
		if sale == nil {
			return
		}
		_ = w.handler.HandleSale(ctx, *sale)

	case w.cfg.PaymentsTable:
		payment, err := w.source.GetPaymentByID(ctx, insert.ID)
		if err != nil {
			w.logger.Error("Failed to fetch notified payment",
				zap.Int64("id", insert.ID), zap.Error(err))
			return
		}
		if payment == nil {
			return
		}
		_ = w.handler.HandlePayment(ctx, *payment)

	default:
		w.logger.Warn("Notification for unwatched table",
			zap.String("table", insert.Table))
	}
}
