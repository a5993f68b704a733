package storage

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"marketgram/tools/errs"
	"marketgram/tools/ids"
)

const (
	collUsers         = "users"
	collConversations = "conversations"
	collMessages      = "messages"
)

// messageDoc is the persisted shape; the sender is stored by id and
// populated on read.
type messageDoc struct {
	ID             string    `bson:"_id"`
	ConversationID string    `bson:"conversation_id"`
	SenderID       string    `bson:"sender_id"`
	Body           string    `bson:"body"`
	CreatedAt      time.Time `bson:"created_at"`
}

type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

func (s *MongoStore) users() *mongo.Collection         { return s.db.Collection(collUsers) }
func (s *MongoStore) conversations() *mongo.Collection { return s.db.Collection(collConversations) }
func (s *MongoStore) messages() *mongo.Collection      { return s.db.Collection(collMessages) }

func (s *MongoStore) CreateMessage(ctx context.Context, conversationID, senderID, body string) (*Message, error) {
	// the conversation must exist before a message can hang off it
	count, err := s.conversations().CountDocuments(ctx, bson.M{"_id": conversationID})
	if err != nil {
		return nil, errs.ErrStorage.WrapMsg(err.Error())
	}
	if count == 0 {
		return nil, errs.ErrNotFound.WrapMsg("conversation " + conversationID)
	}

	doc := messageDoc{
		ID:             ids.GenerateString(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Body:           body,
		CreatedAt:      time.Now().UTC(),
	}
	if _, err := s.messages().InsertOne(ctx, doc); err != nil {
		return nil, errs.ErrStorage.WrapMsg(err.Error())
	}

	sender, err := s.GetUser(ctx, senderID)
	if err != nil {
		// sender display attributes are best-effort; the id always stands
		sender = &User{ID: senderID}
	}
	return &Message{
		ID:             doc.ID,
		ConversationID: doc.ConversationID,
		Sender:         *sender,
		Body:           doc.Body,
		CreatedAt:      doc.CreatedAt,
	}, nil
}

func (s *MongoStore) GetConversationParticipants(ctx context.Context, conversationID string) ([2]string, error) {
	var conv Conversation
	err := s.conversations().FindOne(ctx, bson.M{"_id": conversationID}).Decode(&conv)
	if err == mongo.ErrNoDocuments {
		return [2]string{}, errs.ErrNotFound.WrapMsg("conversation " + conversationID)
	}
	if err != nil {
		return [2]string{}, errs.ErrStorage.WrapMsg(err.Error())
	}
	if len(conv.Participants) != 2 {
		return [2]string{}, errs.ErrStorage.WrapMsg("conversation " + conversationID + " is not two-party")
	}
	return [2]string{conv.Participants[0], conv.Participants[1]}, nil
}

func (s *MongoStore) FindOrCreateConversation(ctx context.Context, userA, userB string) (*Conversation, error) {
	filter := bson.M{"participants": bson.M{"$all": bson.A{userA, userB}, "$size": 2}}

	var conv Conversation
	err := s.conversations().FindOne(ctx, filter).Decode(&conv)
	if err == nil {
		return &conv, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, errs.ErrStorage.WrapMsg(err.Error())
	}

	now := time.Now().UTC()
	conv = Conversation{
		ID:           ids.GenerateString(),
		Participants: []string{userA, userB},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := s.conversations().InsertOne(ctx, conv); err != nil {
		return nil, errs.ErrStorage.WrapMsg(err.Error())
	}
	return &conv, nil
}

func (s *MongoStore) ListConversations(ctx context.Context, userID string) ([]*Conversation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cur, err := s.conversations().Find(ctx, bson.M{"participants": userID}, opts)
	if err != nil {
		return nil, errs.ErrStorage.WrapMsg(err.Error())
	}
	defer cur.Close(ctx)

	var out []*Conversation
	if err := cur.All(ctx, &out); err != nil {
		return nil, errs.ErrStorage.WrapMsg(err.Error())
	}
	return out, nil
}

func (s *MongoStore) ListMessages(ctx context.Context, conversationID string) ([]*Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := s.messages().Find(ctx, bson.M{"conversation_id": conversationID}, opts)
	if err != nil {
		return nil, errs.ErrStorage.WrapMsg(err.Error())
	}
	defer cur.Close(ctx)

	var docs []messageDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errs.ErrStorage.WrapMsg(err.Error())
	}

	senders, err := s.usersByID(ctx, docs)
	if err != nil {
		return nil, err
	}

	out := make([]*Message, 0, len(docs))
	for _, d := range docs {
		sender, ok := senders[d.SenderID]
		if !ok {
			sender = User{ID: d.SenderID}
		}
		out = append(out, &Message{
			ID:             d.ID,
			ConversationID: d.ConversationID,
			Sender:         sender,
			Body:           d.Body,
			CreatedAt:      d.CreatedAt,
		})
	}
	return out, nil
}

// usersByID batches the sender lookups for a message page.
func (s *MongoStore) usersByID(ctx context.Context, docs []messageDoc) (map[string]User, error) {
	idSet := make(map[string]struct{}, len(docs))
	idList := make([]string, 0, len(docs))
	for _, d := range docs {
		if _, seen := idSet[d.SenderID]; !seen {
			idSet[d.SenderID] = struct{}{}
			idList = append(idList, d.SenderID)
		}
	}
	if len(idList) == 0 {
		return map[string]User{}, nil
	}

	cur, err := s.users().Find(ctx, bson.M{"_id": bson.M{"$in": idList}})
	if err != nil {
		return nil, errs.ErrStorage.WrapMsg(err.Error())
	}
	defer cur.Close(ctx)

	var users []User
	if err := cur.All(ctx, &users); err != nil {
		return nil, errs.ErrStorage.WrapMsg(err.Error())
	}
	byID := make(map[string]User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return byID, nil
}

func (s *MongoStore) GetUser(ctx context.Context, userID string) (*User, error) {
	var u User
	err := s.users().FindOne(ctx, bson.M{"_id": userID}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, errs.ErrNotFound.WrapMsg("user " + userID)
	}
	if err != nil {
		return nil, errs.ErrStorage.WrapMsg(err.Error())
	}
	return &u, nil
}
