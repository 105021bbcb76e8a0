package events

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// HeartbeatToken is the literal keep-alive frame, elided before decoding.
const HeartbeatToken = "heartbeat"

var (
	ErrEmptyFrame  = errors.New("empty event frame")
	ErrUnknownKind = errors.New("unknown event kind")
)

func IsHeartbeat(frame []byte) bool {
	return string(frame) == HeartbeatToken
}

// Decode parses one envelope: a kind tag byte followed by the JSON body.
// Frames with an unknown tag return ErrUnknownKind so callers can skip them
// without treating the connection as broken.
func Decode(frame []byte) (Event, error) {
	if len(frame) < 1 {
		return nil, ErrEmptyFrame
	}

	kind := Kind(frame[0])
	payload := frame[1:]

	var event Event
	switch kind {
	case KindChangeStatus:
		event = &ChangeStatus{}
	case KindNewChatMessage:
		event = &NewChatMessage{}
	case KindEditChatMessage:
		event = &EditChatMessage{}
	case KindDeleteChatMessage:
		event = &DeleteChatMessage{}
	case KindStartCategory:
		event = &StartCategory{}
	case KindKillCategory:
		event = &KillCategory{}
	case KindStartChannel:
		event = &StartChannel{}
	case KindKillChannel:
		event = &KillChannel{}
	case KindEditCategory:
		event = &EditCategory{}
	case KindEditChannel:
		event = &EditChannel{}
	case KindCreateOrEditRole:
		event = &CreateOrEditRole{}
	case KindRemoveRole:
		event = &RemoveRole{}
	case KindMoveRole:
		event = &MoveRole{}
	case KindAddRoleMember:
		event = &AddRoleMember{}
	case KindRemoveRoleMember:
		event = &RemoveRoleMember{}
	case KindFriendRequest:
		event = &FriendRequest{}
	case KindAcceptFriend:
		event = &AcceptFriend{}
	case KindRemoveFriend:
		event = &RemoveFriend{}
	case KindAccountDeletion:
		event = &AccountDeletion{}
	case KindEditServerProfile:
		event = &EditServerProfile{}
	case KindChangeServerAvatar:
		event = &ChangeServerAvatar{}
	case KindKillServer:
		event = &KillServer{}
	case KindLeaveServer:
		event = &LeaveServer{}
	case KindBanUser:
		event = &BanUser{}
	case KindKickUser:
		event = &KickUser{}
	default:
		return nil, errors.Wrapf(ErrUnknownKind, "tag [%d]", kind)
	}

	if err := json.Unmarshal(payload, event); err != nil {
		return nil, errors.Wrapf(err, "decoding event kind [%d]", kind)
	}
	return event, nil
}

// Encode builds the envelope for an event, the inverse of Decode.
func Encode(event Event) ([]byte, error) {
	jsonBytes, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}

	frame := make([]byte, 1+len(jsonBytes))
	frame[0] = byte(event.Kind())
	copy(frame[1:], jsonBytes)
	return frame, nil
}
