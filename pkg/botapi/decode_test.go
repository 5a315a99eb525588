package botapi

import (
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"
)

func decodeErr(c *qt.C, err error) *DecodeError {
	var de *DecodeError
	c.Assert(errors.As(err, &de), qt.IsTrue, qt.Commentf("got %v", err))
	return de
}

func TestDecodeUserRequiredOnly(t *testing.T) {
	c := qt.New(t)

	u, err := decodeRaw("", []byte(`{"id": 42, "is_bot": false, "first_name": "A"}`), decodeUser)
	c.Assert(err, qt.IsNil)
	c.Assert(*u, qt.DeepEquals, User{ID: 42, FirstName: "A"})
	c.Assert(u.LastName, qt.IsNil)
	c.Assert(u.Username, qt.IsNil)
}

func TestDecodeUserKeepsEmptyOptional(t *testing.T) {
	c := qt.New(t)

	u, err := decodeRaw("", []byte(`{"id": 1, "is_bot": true, "first_name": "B", "username": ""}`), decodeUser)
	c.Assert(err, qt.IsNil)
	c.Assert(u.Username, qt.Not(qt.IsNil))
	c.Assert(*u.Username, qt.Equals, "")
}

func TestDecodeMissingRequiredKey(t *testing.T) {
	c := qt.New(t)

	_, err := decodeRaw("", []byte(`{"id": 42, "is_bot": false}`), decodeUser)
	de := decodeErr(c, err)
	c.Assert(de.Key, qt.Equals, "first_name")
	c.Assert(de.Reason, qt.Equals, "required key missing")
}

func TestDecodeWrongType(t *testing.T) {
	c := qt.New(t)

	_, err := decodeRaw("", []byte(`{"id": "42", "is_bot": false, "first_name": "A"}`), decodeUser)
	de := decodeErr(c, err)
	c.Assert(de.Key, qt.Equals, "id")
	c.Assert(de.Reason, qt.Equals, "expected int64")

	_, err = decodeRaw("", []byte(`[1, 2]`), decodeUser)
	de = decodeErr(c, err)
	c.Assert(de.Reason, qt.Equals, "expected object")
}

func TestDecodeMessageRequiredOnly(t *testing.T) {
	c := qt.New(t)

	m, err := DecodeMessage([]byte(`{"message_id": 7, "date": 1441645532, "chat": {"id": -5, "type": "group"}}`))
	c.Assert(err, qt.IsNil)
	c.Assert(m.MessageID, qt.Equals, int64(7))
	c.Assert(m.Chat, qt.DeepEquals, Chat{ID: -5, Type: "group"})
	c.Assert(m.From, qt.IsNil)
	c.Assert(m.Text, qt.IsNil)
	c.Assert(m.Photo, qt.IsNil)
	c.Assert(m.Entities, qt.IsNil)
	c.Assert(m.ReplyToMessage, qt.IsNil)
	c.Assert(m.GroupChatCreated, qt.IsNil)
}

func TestDecodeMessageNested(t *testing.T) {
	c := qt.New(t)

	m, err := DecodeMessage([]byte(`{
		"message_id": 8,
		"from": {"id": 1, "is_bot": false, "first_name": "Ann"},
		"date": 1,
		"chat": {"id": 1, "type": "private", "first_name": "Ann"},
		"reply_to_message": {"message_id": 3, "date": 0, "chat": {"id": 1, "type": "private"}, "text": "hi"},
		"photo": [
			{"file_id": "small", "width": 90, "height": 60},
			{"file_id": "big", "width": 900, "height": 600, "file_size": 12345}
		],
		"photo_unknown_key": true,
		"caption": "two sizes",
		"entities": [],
		"location": {"longitude": 30.5, "latitude": 50.45}
	}`))
	c.Assert(err, qt.IsNil)
	c.Assert(m.From.FirstName, qt.Equals, "Ann")
	c.Assert(*m.Chat.FirstName, qt.Equals, "Ann")
	c.Assert(*m.ReplyToMessage.Text, qt.Equals, "hi")
	c.Assert(m.Photo, qt.HasLen, 2)
	c.Assert(m.Photo[0].FileID, qt.Equals, "small")
	c.Assert(m.Photo[1].FileID, qt.Equals, "big")
	c.Assert(*m.Photo[1].FileSize, qt.Equals, int64(12345))
	c.Assert(m.Photo[0].FileSize, qt.IsNil)
	c.Assert(*m.Caption, qt.Equals, "two sizes")
	c.Assert(m.Entities, qt.Not(qt.IsNil))
	c.Assert(m.Entities, qt.HasLen, 0)
	c.Assert(*m.Location, qt.Equals, Location{Longitude: 30.5, Latitude: 50.45})
}

func TestDecodeNestedErrorPath(t *testing.T) {
	c := qt.New(t)

	_, err := DecodeMessage([]byte(`{"message_id": 1, "date": 1, "chat": {"type": "private"}}`))
	c.Assert(decodeErr(c, err).Key, qt.Equals, "chat.id")

	_, err = DecodeMessage([]byte(`{"message_id": 1, "date": 1, "chat": {"id": 1, "type": "private"},
		"photo": [{"file_id": "a", "width": 1, "height": 1}, {"file_id": "b", "width": 1}]}`))
	c.Assert(decodeErr(c, err).Key, qt.Equals, "photo[1].height")

	_, err = DecodeMessage([]byte(`{"message_id": 1, "date": 1, "chat": {"id": 1, "type": "private"}, "photo": {}}`))
	de := decodeErr(c, err)
	c.Assert(de.Key, qt.Equals, "photo")
	c.Assert(de.Reason, qt.Equals, "expected array")
}

func TestDecodeUserProfilePhotos(t *testing.T) {
	c := qt.New(t)

	p, err := decodeRaw("", []byte(`{
		"total_count": 2,
		"photos": [
			[{"file_id": "a1", "width": 160, "height": 160}, {"file_id": "a2", "width": 640, "height": 640}],
			[{"file_id": "b1", "width": 160, "height": 160}]
		]
	}`), decodeUserProfilePhotos)
	c.Assert(err, qt.IsNil)
	c.Assert(p.TotalCount, qt.Equals, 2)
	c.Assert(p.Photos, qt.HasLen, 2)
	c.Assert(p.Photos[0], qt.HasLen, 2)
	c.Assert(p.Photos[0][1].FileID, qt.Equals, "a2")
	c.Assert(p.Photos[1][0].FileID, qt.Equals, "b1")

	_, err = decodeRaw("", []byte(`{"total_count": 1, "photos": [[{"file_id": "a1", "width": 1}]]}`), decodeUserProfilePhotos)
	c.Assert(decodeErr(c, err).Key, qt.Equals, "photos[0][0].height")
}

func TestDecodeUpdate(t *testing.T) {
	c := qt.New(t)

	u, err := DecodeUpdate([]byte(`{"update_id": 10, "callback_query": {
		"id": "cb1", "from": {"id": 5, "is_bot": false, "first_name": "Z"}, "data": "up"}}`))
	c.Assert(err, qt.IsNil)
	c.Assert(u.UpdateID, qt.Equals, int64(10))
	c.Assert(u.Message, qt.IsNil)
	c.Assert(u.CallbackQuery.ID, qt.Equals, "cb1")
	c.Assert(u.CallbackQuery.From.ID, qt.Equals, int64(5))
	c.Assert(*u.CallbackQuery.Data, qt.Equals, "up")
	c.Assert(u.CallbackQuery.Message, qt.IsNil)

	_, err = DecodeUpdate([]byte(`not json`))
	c.Assert(decodeErr(c, err).Reason, qt.Equals, "expected object")
}

func TestDecodeDoesNotMutateInput(t *testing.T) {
	c := qt.New(t)

	input := []byte(`{"update_id": 1, "message": {"message_id": 1, "date": 1, "chat": {"id": 1, "type": "private"}}}`)
	orig := string(input)
	_, err := DecodeUpdate(input)
	c.Assert(err, qt.IsNil)
	c.Assert(string(input), qt.Equals, orig)
}
