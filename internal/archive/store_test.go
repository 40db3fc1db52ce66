package archive

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"buzzergo/internal/services/buzzer"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/suite"
)

type StoreTestSuite struct {
	suite.Suite
	mock  sqlmock.Sqlmock
	store *Store
	now   time.Time
}

func (s *StoreTestSuite) SetupTest() {
	db, mock, err := sqlmock.New()
	s.Require().NoError(err)
	s.mock = mock
	s.store = NewStore(db)
	s.now = time.Date(2025, 4, 19, 12, 0, 0, 0, time.UTC)
}

func (s *StoreTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func (s *StoreTestSuite) record(round int, names ...string) buzzer.RoundRecord {
	rec := buzzer.RoundRecord{RoomCode: "AB12CD", Round: round, ClosedAt: s.now}
	for _, n := range names {
		rec.BuzzOrder = append(rec.BuzzOrder, buzzer.BuzzEntry{ConnectionID: "conn-" + n, Name: n})
	}
	return rec
}

func (s *StoreTestSuite) TestEnsureSchema() {
	s.mock.ExpectExec("CREATE TABLE IF NOT EXISTS buzz_rounds").WillReturnResult(sqlmock.NewResult(0, 0))
	s.NoError(s.store.EnsureSchema(context.Background()))
}

func (s *StoreTestSuite) TestInsertWritesBatchInOneTransaction() {
	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO buzz_rounds")).
		WithArgs("AB12CD", 1, `[{"name":"Bob"},{"name":"Alice"}]`, s.now).
		WillReturnResult(sqlmock.NewResult(1, 1))
	s.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO buzz_rounds")).
		WithArgs("AB12CD", 2, `[{"name":"Alice"}]`, s.now).
		WillReturnResult(sqlmock.NewResult(2, 1))
	s.mock.ExpectCommit()

	err := s.store.Insert(context.Background(), []buzzer.RoundRecord{
		s.record(1, "Bob", "Alice"),
		s.record(2, "Alice"),
	})
	s.NoError(err)
}

func (s *StoreTestSuite) TestInsertRollsBackOnError() {
	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO buzz_rounds")).
		WillReturnError(errors.New("disk full"))
	s.mock.ExpectRollback()

	err := s.store.Insert(context.Background(), []buzzer.RoundRecord{s.record(1, "Bob")})
	s.ErrorContains(err, "disk full")
}

func (s *StoreTestSuite) TestListRounds() {
	rows := sqlmock.NewRows([]string{"room_code", "round", "buzz_order", "closed_at"}).
		AddRow("AB12CD", 2, []byte(`[{"name":"Alice"}]`), s.now).
		AddRow("AB12CD", 1, []byte(`[{"name":"Bob"},{"name":"Alice"}]`), s.now.Add(-time.Minute))
	s.mock.ExpectQuery(regexp.QuoteMeta("FROM buzz_rounds")).
		WithArgs("AB12CD", 20).
		WillReturnRows(rows)

	list, err := s.store.ListRounds(context.Background(), "AB12CD", 0)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(2, list[0].Round)
	s.Equal([]buzzer.BuzzEntry{{Name: "Bob"}, {Name: "Alice"}}, list[1].BuzzOrder)
}
