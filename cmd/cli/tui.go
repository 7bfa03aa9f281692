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

package cli

import (
	"github.com/charmbracelet/bubbletea"
)

// Main TUI model that routes between screens
type model struct {
	currentScreen screen
	width         int
	height        int
	quitting      bool

	// Screen models
	setupModel  SetupModel
	remoteModel RemoteModel
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.currentScreen == screenRemote {
			m.remoteModel, _ = m.remoteModel.Update(msg)
		}
		return m, nil

	case tea.KeyMsg:
		// Global quit handling
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "q":
			if m.currentScreen == screenSetup {
				m.quitting = true
				return m, tea.Quit
			}
			// In remote screen, 'q' disconnects and goes back to setup
			m.remoteModel.Disconnect()
			m.currentScreen = screenSetup
			m.setupModel = m.setupModel.Reset()
			return m, nil
		}

		// Route messages to the active screen
		switch m.currentScreen {
		case screenSetup:
			var cmd tea.Cmd
			m.setupModel, cmd = m.setupModel.Update(msg)

			// Move to the remote screen once a TV is connected
			if m.setupModel.IsConnected() {
				m.remoteModel = NewRemoteModel(
					m.setupModel.Device(),
					m.setupModel.DeviceInfo(),
					m.setupModel.DebugMode(),
					m.setupModel.TestMode(),
				)
				m.remoteModel.width = m.width
				m.remoteModel.height = m.height
				m.currentScreen = screenRemote
			}

			return m, cmd

		case screenRemote:
			var cmd tea.Cmd
			m.remoteModel, cmd = m.remoteModel.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m model) View() string {
	if m.quitting {
		return successStyle.Render("Thanks for using Zapper!") + "\n"
	}

	switch m.currentScreen {
	case screenSetup:
		return m.setupModel.View()
	case screenRemote:
		return m.remoteModel.View()
	default:
		return "Unknown screen"
	}
}

// StartTUI runs the interactive remote. The config path is where the setup
// screen saves the TV address once a connection succeeds.
func StartTUI(configPath string, debug, test bool) error {
	p := tea.NewProgram(
		initialModel(configPath, debug, test),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	// Ensure proper cleanup on panic or interrupt
	defer func() {
		if r := recover(); r != nil {
			p.Kill()
		}
	}()

	_, err := p.Run()
	return err
}

func initialModel(configPath string, debug, test bool) model {
	return model{
		currentScreen: screenSetup,
		setupModel:    NewSetupModel(configPath, debug, test),
	}
}
