package config

import (
	"io/ioutil"
	"sync"
	"time"

	"github.com/flysto/syncpanel/apimodel"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ServerState is the mutable part of the configuration: the last pushed job
// status and the display power flag. Mutations are saved in the background a
// few seconds after the last change, so a burst of status updates costs one
// write.
type ServerState struct {
	serverStateConfig     ServerStateConfig
	lock                  sync.RWMutex
	backupTimer           *time.Timer
	completeStateFilename string
}

func NewServerState(completeStateFilename string) *ServerState {
	serverState := &ServerState{
		completeStateFilename: completeStateFilename,
	}

	rawConfig, err := ioutil.ReadFile(completeStateFilename)
	if err == nil {
		// Interpret state file
		err = yaml.Unmarshal(rawConfig, &serverState.serverStateConfig)
		if err != nil {
			logrus.Fatalf("Unable to interpret state file: %v\n", err)
		}
	} else {
		// Create default state file
		logrus.Infof("Create default state file")
		serverState.SetDisplayOn(true)
	}

	return serverState
}

func (ss *ServerState) DisplayOn() bool {
	ss.lock.RLock()
	defer ss.lock.RUnlock()

	return ss.serverStateConfig.DisplayOn
}

func (ss *ServerState) SetDisplayOn(on bool) {
	ss.lock.Lock()
	defer ss.lock.Unlock()

	ss.serverStateConfig.DisplayOn = on
	ss.scheduleSave()
}

func (ss *ServerState) LastStatus() *apimodel.JobStatus {
	ss.lock.RLock()
	defer ss.lock.RUnlock()

	return ss.serverStateConfig.LastStatus
}

func (ss *ServerState) SetLastStatus(status *apimodel.JobStatus) {
	ss.lock.Lock()
	defer ss.lock.Unlock()

	ss.serverStateConfig.LastStatus = status
	ss.scheduleSave()
}

func (ss *ServerState) scheduleSave() {
	if ss.backupTimer == nil {
		ss.backupTimer = time.AfterFunc(10*time.Second, func() {
			ss.lock.Lock()
			defer ss.lock.Unlock()
			ss.save()
		})
	} else {
		ss.backupTimer.Reset(10 * time.Second)
	}
}

func (ss *ServerState) save() {
	logrus.Infof("Save state file: %s", ss.completeStateFilename)
	rawConfig, err := yaml.Marshal(&ss.serverStateConfig)
	if err != nil {
		logrus.Fatalf("Unable to serialize state file: %v\n", err)
	}
	err = ioutil.WriteFile(ss.completeStateFilename, rawConfig, 0660)
	if err != nil {
		logrus.Fatalf("Unable to save state file: %v\n", err)
	}
}

func (ss *ServerState) FlushSave() {
	ss.lock.Lock()
	defer ss.lock.Unlock()
	if ss.backupTimer != nil {
		if ss.backupTimer.Stop() {
			ss.save()
		}
	}
}

type ServerStateConfig struct {
	DisplayOn  bool                `yaml:"display_on"`
	LastStatus *apimodel.JobStatus `yaml:"last_status"`
}
