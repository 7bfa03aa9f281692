// Copyright 2025 Arion Yau
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package samsung

// KeyCode represents a remote control key code for Samsung Smart TVs
type KeyCode string

// AppID represents a Tizen application identifier for Samsung Smart TVs
type AppID string

// ConnectionState represents the lifecycle state of a remote session
type ConnectionState string

const (
	StateDisconnected ConnectionState = "disconnected"
	StateConnecting   ConnectionState = "connecting"
	StateConnected    ConnectionState = "connected"
)

// RemoteMessage is the JSON envelope for ms.remote.control frames
type RemoteMessage struct {
	Method string       `json:"method"`
	Params RemoteParams `json:"params"`
}

// RemoteParams carries the command body. The field casing is inconsistent
// on the wire; the tags preserve what the TV expects.
type RemoteParams struct {
	Cmd          string `json:"Cmd"`
	DataOfCmd    string `json:"DataOfCmd"`
	Option       string `json:"Option,omitempty"`
	TypeOfRemote string `json:"TypeOfRemote"`
}

// EmitMessage is the JSON envelope for ms.channel.emit frames
type EmitMessage struct {
	Method string     `json:"method"`
	Params EmitParams `json:"params"`
}

// EmitParams addresses a channel event at the TV host
type EmitParams struct {
	Event string     `json:"event"`
	To    string     `json:"to"`
	Data  LaunchData `json:"data"`
}

// LaunchData identifies the application to open
type LaunchData struct {
	AppID      string `json:"appId"`
	ActionType string `json:"action_type"`
}

// ChannelEvent is the first frame the TV sends after a session opens. On a
// fresh pairing the data block carries the token to persist.
type ChannelEvent struct {
	Event string `json:"event"`
	Data  struct {
		Token string `json:"token"`
	} `json:"data"`
}
