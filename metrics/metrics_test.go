// Copyright (C) 2023 Gobalsky Labs Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"code.vegaprotocol.io/obavs/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T) string {
	t.Helper()
	w := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	return string(body)
}

func TestSetup(t *testing.T) {
	// updates before the setup are dropped
	require.NoError(t, metrics.Setup(metrics.Config{Enabled: false}))
	metrics.ProposalCounterInc("recorded")
	metrics.PendingTasksAdd(10)

	require.NoError(t, metrics.Setup(metrics.NewDefaultConfig()))
	require.NoError(t, metrics.Setup(metrics.NewDefaultConfig()))

	metrics.ProposalCounterInc("recorded")
	metrics.ProposalCounterInc("recorded")
	metrics.ProposalCounterInc("duplicate")
	metrics.FaultCounterInc("conflict")
	metrics.SubmissionCounterInc("ok")
	metrics.OperatorCounterInc("responded")
	metrics.QuorumTimeoutInc()
	metrics.PendingTasksAdd(3)
	metrics.PendingTasksAdd(-1)
	metrics.QuorumLatencyObserve(200 * time.Millisecond)
	metrics.NewTimeCounter("match").StepTimeObserve()
	metrics.APIRequestAndTimeJSONRPC("process_signed_task_response", time.Now())

	body := scrape(t)
	for _, line := range []string{
		`obavs_proposals_total{status="recorded"} 2`,
		`obavs_proposals_total{status="duplicate"} 1`,
		`obavs_faults_total{kind="conflict"} 1`,
		`obavs_submissions_total{result="ok"} 1`,
		`obavs_operator_tasks_total{result="responded"} 1`,
		`obavs_quorum_timeouts_total 1`,
		`obavs_pending_tasks 2`,
		`obavs_quorum_seconds_count 1`,
		`obavs_step_seconds_count{step="match"} 1`,
		`obavs_request_count_total{apiType="JSONRPC",requestType="process_signed_task_response"} 1`,
	} {
		assert.Contains(t, body, line)
	}
}
