// The viewer is a read-only ops tool: it opens the server's SQLite file
// directly and prints rooms, members and recent messages to the console.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"

	"roomchat/domain"
	"roomchat/repositories"
)

type Config struct {
	SqliteFilepath string `env:"SQLITE_FILEPATH,required=true"`
}

func main() {
	roomFlag := flag.Int64("room", 0, "print the members and recent messages of one room")
	linesFlag := flag.Int("lines", 20, "number of recent messages to print")
	flag.Parse()

	// 1. Load config
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	// 2. Open the store (WAL mode allows reading next to a live server)
	store, err := repositories.Open(config.SqliteFilepath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	if *roomFlag > 0 {
		printRoom(ctx, store, domain.RoomID(*roomFlag), *linesFlag)
		return
	}
	printRooms(ctx, store)
}

func printRooms(ctx context.Context, store *repositories.Store) {
	rows, err := store.DB().QueryContext(ctx, `
		SELECT r.id, r.name, r.room_type, u.nickname,
		       (SELECT COUNT(*) FROM chat_room_users m WHERE m.room_id = r.id),
		       (SELECT COUNT(*) FROM messages msg WHERE msg.room_id = r.id)
		FROM chat_rooms r
		JOIN users u ON u.id = r.owner_id
		ORDER BY r.id`)
	if err != nil {
		log.Fatalf("Listing rooms failed: %v", err)
	}
	defer rows.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Name", "Type", "Owner", "Members", "Messages"})

	count := 0
	for rows.Next() {
		var id int64
		var name, roomType, owner string
		var members, messages int
		if err := rows.Scan(&id, &name, &roomType, &owner, &members, &messages); err != nil {
			log.Fatalf("Scanning room failed: %v", err)
		}
		table.Append([]string{
			fmt.Sprintf("%d", id), name, colorType(roomType), owner,
			fmt.Sprintf("%d", members), fmt.Sprintf("%d", messages),
		})
		count++
	}
	if err := rows.Err(); err != nil {
		log.Fatalf("Iterating rooms failed: %v", err)
	}

	color.Cyan.Printf("%d room(s)\n", count)
	table.Render()
}

func printRoom(ctx context.Context, store *repositories.Store, roomID domain.RoomID, lines int) {
	var roomName string
	err := store.DB().QueryRowContext(ctx, `SELECT name FROM chat_rooms WHERE id = ?`, roomID).Scan(&roomName)
	if err != nil {
		log.Fatalf("Room %d not found: %v", roomID, err)
	}
	color.Cyan.Printf("Room %d: %s\n\n", roomID, roomName)

	members, err := store.DB().QueryContext(ctx,
		`SELECT user_id, nickname, role FROM chat_room_users WHERE room_id = ? ORDER BY role, nickname`, roomID)
	if err != nil {
		log.Fatalf("Listing members failed: %v", err)
	}
	defer members.Close()

	memberTable := tablewriter.NewWriter(os.Stdout)
	memberTable.SetHeader([]string{"User", "Nickname", "Role"})
	for members.Next() {
		var userID int64
		var nickname, role string
		if err := members.Scan(&userID, &nickname, &role); err != nil {
			log.Fatalf("Scanning member failed: %v", err)
		}
		if role == string(domain.RoleAdmin) {
			role = color.Red.Sprint(role)
		}
		memberTable.Append([]string{fmt.Sprintf("%d", userID), nickname, role})
	}
	memberTable.Render()

	messages, err := store.DB().QueryContext(ctx, `
		SELECT id, author_name, content, msg_type, created_at
		FROM messages WHERE room_id = ? ORDER BY id DESC LIMIT ?`, roomID, lines)
	if err != nil {
		log.Fatalf("Listing messages failed: %v", err)
	}
	defer messages.Close()

	messageTable := tablewriter.NewWriter(os.Stdout)
	messageTable.SetHeader([]string{"ID", "Author", "Kind", "At", "Content"})
	for messages.Next() {
		var id, createdAt int64
		var author, content, kind string
		if err := messages.Scan(&id, &author, &content, &kind, &createdAt); err != nil {
			log.Fatalf("Scanning message failed: %v", err)
		}
		if len(content) > 60 {
			content = content[:57] + "..."
		}
		messageTable.Append([]string{
			fmt.Sprintf("%d", id), author, kind,
			time.UnixMilli(createdAt).Format("02 Jan 15:04"), content,
		})
	}
	messageTable.Render()
}

func colorType(roomType string) string {
	switch roomType {
	case string(domain.VisibilityPrivate):
		return color.Yellow.Sprint(roomType)
	case string(domain.VisibilityGame):
		return color.Green.Sprint(roomType)
	default:
		return roomType
	}
}
