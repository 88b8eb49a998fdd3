package sqlite

import (
	"context"
	"database/sql"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/ysy950803/chatroster/internal/errors"
	"github.com/ysy950803/chatroster/internal/model"
)

// Source reads a decrypted v4 contact.db.
type Source struct {
	path string
	db   *sql.DB
}

func New(path string) (*Source, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.DBConnectFailed(path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.DBConnectFailed(path, err)
	}
	return &Source{path: path, db: db}, nil
}

func (s *Source) Path() string {
	return s.path
}

// 联系人
func (s *Source) FetchContacts(ctx context.Context) ([]*model.Contact, error) {
	query := `SELECT username, local_type, alias, remark, nick_name FROM contact ORDER BY username`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.QueryFailed(query, err)
	}
	defer rows.Close()

	contacts := []*model.Contact{}
	for rows.Next() {
		var contactV4 model.ContactV4
		err := rows.Scan(
			&contactV4.UserName,
			&contactV4.LocalType,
			&contactV4.Alias,
			&contactV4.Remark,
			&contactV4.NickName,
		)
		if err != nil {
			return nil, errors.ScanRowFailed(err)
		}
		contacts = append(contacts, contactV4.Wrap())
	}
	if err := rows.Err(); err != nil {
		return nil, errors.ScanRowFailed(err)
	}
	return contacts, nil
}

// ResolveMembers answers in request order. Ids missing from contact.db come
// back as bare records so the window keeps its length.
func (s *Source) ResolveMembers(ctx context.Context, ids []string) ([]*model.Member, error) {
	if len(ids) == 0 {
		return []*model.Member{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	query := `SELECT username, alias, remark, nick_name, small_head_url FROM contact WHERE username IN (` + placeholders + `)`
	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.QueryFailed(query, err)
	}
	defer rows.Close()

	found := make(map[string]*model.Member, len(ids))
	for rows.Next() {
		var contactV4 model.ContactV4
		var headURL sql.NullString
		if err := rows.Scan(
			&contactV4.UserName,
			&contactV4.Alias,
			&contactV4.Remark,
			&contactV4.NickName,
			&headURL,
		); err != nil {
			return nil, errors.ScanRowFailed(err)
		}
		contactV4.SmallHeadURL = headURL.String
		found[contactV4.UserName] = contactV4.WrapMember()
	}
	if err := rows.Err(); err != nil {
		return nil, errors.ScanRowFailed(err)
	}

	members := make([]*model.Member, 0, len(ids))
	for _, id := range ids {
		if m, ok := found[id]; ok {
			members = append(members, m)
			continue
		}
		log.Debug().Str("username", id).Msg("member not in contact.db")
		members = append(members, &model.Member{UserName: id})
	}
	return members, nil
}

// 群聊成员
func (s *Source) ChatRoomMembers(ctx context.Context, name string) ([]string, error) {
	var roomID int64
	query := `SELECT id FROM chat_room WHERE username = ?`
	if err := s.db.QueryRowContext(ctx, query, name).Scan(&roomID); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.ErrChatRoomNotFound
		}
		return nil, errors.QueryFailed(query, err)
	}

	query = `SELECT c.username FROM chatroom_member m
			JOIN contact c ON c.id = m.member_id
			WHERE m.room_id = ?
			ORDER BY m.rowid`
	rows, err := s.db.QueryContext(ctx, query, roomID)
	if err != nil {
		return nil, errors.QueryFailed(query, err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.ScanRowFailed(err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CheckLogin treats a reachable local database as logged in.
func (s *Source) CheckLogin(ctx context.Context) (int, error) {
	if err := s.db.PingContext(ctx); err != nil {
		return 0, err
	}
	return 1, nil
}

func (s *Source) Close() error {
	return s.db.Close()
}
